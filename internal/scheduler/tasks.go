package scheduler

import (
	"encoding/json"

	"nuvra_crm_backend/internal/leads/domain"
	"nuvra_crm_backend/internal/leads/ports"

	"github.com/hibiken/asynq"
)

const TaskLeadNotify = "integrations.lead_notify"

type LeadNotifyPayload struct {
	Lead    domain.Lead                 `json:"lead"`
	Product *ports.AuthenticatedProduct `json:"product,omitempty"`
}

func NewLeadNotifyTask(n ports.LeadNotification) (*asynq.Task, error) {
	data, err := json.Marshal(LeadNotifyPayload{Lead: n.Lead, Product: n.Product})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadNotify, data), nil
}

func ParseLeadNotifyPayload(task *asynq.Task) (ports.LeadNotification, error) {
	var payload LeadNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ports.LeadNotification{}, err
	}
	return ports.LeadNotification{Lead: payload.Lead, Product: payload.Product}, nil
}
