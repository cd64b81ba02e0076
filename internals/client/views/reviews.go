package views

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/api"
)

type ReviewAPI interface {
	List(ctx context.Context) ([]api.Review, error)
	Add(ctx context.Context, in api.NewReview) (*api.Review, error)
	Like(ctx context.Context, reviewID string) (*api.Review, error)
	Dislike(ctx context.Context, reviewID string) (*api.Review, error)
}

var (
	ErrReviewIncomplete = errors.New("review needs a rating and text")
	ErrReviewNotFound   = errors.New("review not found")
)

// StarRow is a five-star rendering of an average.
type StarRow struct {
	Full    int
	Partial bool
	Empty   int
}

// ReviewPanel holds the review list and the compose box of one listing.
// In live mode every change goes through the API first; in local demo
// mode nothing leaves the process.
type ReviewPanel struct {
	Mode catalog.ReviewMode
	Now  func() time.Time

	api ReviewAPI

	mu      sync.Mutex
	reviews []api.Review
	rating  int
	text    string
	author  string
	seq     int
}

// NewReviewPanel builds a panel; seed is the starting list for local demo
// mode and ignored in live mode.
func NewReviewPanel(mode catalog.ReviewMode, a ReviewAPI, seed []api.Review) *ReviewPanel {
	p := &ReviewPanel{Mode: mode, Now: time.Now, api: a}
	if mode == catalog.ReviewLocalDemo {
		p.reviews = append([]api.Review(nil), seed...)
	}
	return p
}

func (p *ReviewPanel) Load(ctx context.Context) error {
	if p.Mode == catalog.ReviewLocalDemo {
		return nil
	}
	rows, err := p.api.List(ctx)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.reviews = rows
	p.mu.Unlock()
	return nil
}

func (p *ReviewPanel) SetRating(r int) {
	if r < 0 {
		r = 0
	}
	if r > 5 {
		r = 5
	}
	p.mu.Lock()
	p.rating = r
	p.mu.Unlock()
}

func (p *ReviewPanel) SetText(s string) {
	p.mu.Lock()
	p.text = s
	p.mu.Unlock()
}

func (p *ReviewPanel) SetAuthor(s string) {
	p.mu.Lock()
	p.author = s
	p.mu.Unlock()
}

// Draft returns the compose box contents.
func (p *ReviewPanel) Draft() (rating int, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rating, p.text
}

// Submit posts the draft. An incomplete draft is rejected before any call.
func (p *ReviewPanel) Submit(ctx context.Context) error {
	p.mu.Lock()
	rating, text, author := p.rating, strings.TrimSpace(p.text), strings.TrimSpace(p.author)
	p.mu.Unlock()

	if rating <= 0 || text == "" {
		return ErrReviewIncomplete
	}

	var rv api.Review
	if p.Mode == catalog.ReviewLive {
		got, err := p.api.Add(ctx, api.NewReview{Rating: rating, Text: text, Author: author})
		if err != nil {
			return err
		}
		rv = *got
	} else {
		p.mu.Lock()
		p.seq++
		rv = api.Review{ID: "local-" + strconv.Itoa(p.seq), Rating: rating, Text: text, Author: author}
		p.mu.Unlock()
	}
	rv.Likes, rv.Dislikes = 0, 0
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = p.Now()
	}
	if rv.Author == "" {
		rv.Author = "Anonymous"
	}

	p.mu.Lock()
	p.reviews = append([]api.Review{rv}, p.reviews...)
	p.rating, p.text = 0, ""
	p.mu.Unlock()
	return nil
}

func (p *ReviewPanel) Like(ctx context.Context, id string) error {
	return p.vote(ctx, id, true)
}

func (p *ReviewPanel) Dislike(ctx context.Context, id string) error {
	return p.vote(ctx, id, false)
}

// vote bumps a counter. Live mode calls first and only bumps on success;
// there is no rollback to do.
func (p *ReviewPanel) vote(ctx context.Context, id string, like bool) error {
	if p.index(id) < 0 {
		return ErrReviewNotFound
	}
	if p.Mode == catalog.ReviewLive {
		var err error
		if like {
			_, err = p.api.Like(ctx, id)
		} else {
			_, err = p.api.Dislike(ctx, id)
		}
		if err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.reviews {
		if p.reviews[i].ID != id {
			continue
		}
		if like {
			p.reviews[i].Likes++
		} else {
			p.reviews[i].Dislikes++
		}
	}
	return nil
}

func (p *ReviewPanel) index(id string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, r := range p.reviews {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (p *ReviewPanel) Reviews() []api.Review {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]api.Review(nil), p.reviews...)
}

// Average is the mean rating rounded to one decimal, 0 with no reviews.
func (p *ReviewPanel) Average() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return AverageRating(p.reviews)
}

func AverageRating(rs []api.Review) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(rs))*10) / 10
}

func Stars(avg float64) StarRow {
	full := int(math.Floor(avg))
	if full > 5 {
		full = 5
	}
	if full < 0 {
		full = 0
	}
	partial := avg-float64(full) > 0 && full < 5
	empty := 5 - full
	if partial {
		empty--
	}
	return StarRow{Full: full, Partial: partial, Empty: empty}
}

func RatingLabel(avg float64) string {
	switch {
	case avg >= 4:
		return "Excellent"
	case avg >= 3:
		return "Good"
	default:
		return "Average"
	}
}

func (p *ReviewPanel) Stars() StarRow { return Stars(p.Average()) }

func (p *ReviewPanel) Label() string { return RatingLabel(p.Average()) }
