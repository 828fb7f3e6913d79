package http

import (
	"time"

	"github.com/nekogravitycat/shareit-backend/internal/itemrequest"
)

type CreateRequestBody struct {
	Description string `json:"description" binding:"required,max=1000"`
}

type AnswerResponse struct {
	ItemID      string `json:"item_id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

type RequestResponse struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	RequesterID string           `json:"requester_id"`
	CreatedAt   time.Time        `json:"created_at"`
	Items       []AnswerResponse `json:"items"`
}

func NewRequestResponse(r *itemrequest.Request) RequestResponse {
	items := make([]AnswerResponse, len(r.Items))
	for i, a := range r.Items {
		items[i] = AnswerResponse{
			ItemID:      a.ItemID,
			OwnerID:     a.OwnerID,
			Name:        a.Name,
			Description: a.Description,
			Available:   a.Available,
		}
	}
	return RequestResponse{
		ID:          r.ID,
		Description: r.Description,
		RequesterID: r.RequesterID,
		CreatedAt:   r.CreatedAt,
		Items:       items,
	}
}

func newRequestList(requests []*itemrequest.Request) []RequestResponse {
	out := make([]RequestResponse, len(requests))
	for i, r := range requests {
		out[i] = NewRequestResponse(r)
	}
	return out
}
