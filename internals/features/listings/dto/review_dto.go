package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"edudirectory_backend/internals/features/listings/model"
)

const AnonymousAuthor = "Anonymous"

type CreateReviewRequest struct {
	Text   string `json:"text" form:"text" validate:"notblank,max=2000"`
	Rating int    `json:"rating" form:"rating" validate:"min=1,max=5"`
	Author string `json:"author" form:"author" validate:"omitempty,max=100"`
}

func (r CreateReviewRequest) ToModel(listingID uuid.UUID) model.ReviewModel {
	author := strings.TrimSpace(r.Author)
	if author == "" {
		author = AnonymousAuthor
	}
	return model.ReviewModel{
		ListingID: listingID,
		Author:    author,
		Text:      strings.TrimSpace(r.Text),
		Rating:    r.Rating,
	}
}

type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listingId"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Rating    int       `json:"rating"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewReviewResponse(m *model.ReviewModel) ReviewResponse {
	return ReviewResponse{
		ID:        m.ID,
		ListingID: m.ListingID,
		Author:    m.Author,
		Text:      m.Text,
		Rating:    m.Rating,
		Likes:     m.Likes,
		Dislikes:  m.Dislikes,
		CreatedAt: m.CreatedAt,
	}
}

func NewReviewResponses(rows []model.ReviewModel) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewReviewResponse(&rows[i]))
	}
	return out
}
