package profile

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/wanpass/wanpass/internal/pkg/classify"
)

// Request carries the classifier output a profile is generated from.
type Request struct {
	AnimalType    string
	Breed         string
	Color         string
	ExtraFeatures *classify.ExtraFeatures
}

// Profile is a generated set of certificate fields: a pet persona with
// exactly five trait notes and a tagline.
type Profile struct {
	Gender       string   `json:"gender"`
	PetName      string   `json:"pet_name"`
	OwnerName    string   `json:"owner_name"`
	SpecialNotes []string `json:"special_notes"`
	FavoriteWord string   `json:"favorite_word"`
}

// Generator produces a profile from classifier output.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Profile, error)
}

// DefaultProfile is the fixed fallback used whenever generation fails.
// Submission flows never propagate a generator error.
func DefaultProfile() *Profile {
	return &Profile{
		Gender:       "オス",
		PetName:      "ポチ",
		OwnerName:    "わんこの母",
		SpecialNotes: []string{"もふもふ", "つぶらな瞳", "マイペース", "よく寝る", "食いしん坊"},
		FavoriteWord: "元気いっぱい！",
	}
}

// defaultNotes pad generated trait lists that come back short.
var defaultNotes = []string{"もふもふ", "つぶらな瞳", "マイペース", "良く寝る", "食欲旺盛"}

// Service wraps a Generator with the absorb-failures contract: any generator
// error is logged and replaced by the default profile.
type Service struct {
	generator Generator
}

// NewService creates a profile service around the given generator. A nil
// generator always yields the default profile.
func NewService(generator Generator) *Service {
	return &Service{generator: generator}
}

// Generate returns a generated profile, or the fixed default when the
// generator is unavailable or fails.
func (s *Service) Generate(ctx context.Context, req Request) *Profile {
	if s.generator == nil {
		return DefaultProfile()
	}

	p, err := s.generator.Generate(ctx, req)
	if err != nil {
		log.Warnf("[Profile] Generation failed, using default profile: %v", err)
		return DefaultProfile()
	}

	return normalize(p)
}

// normalize enforces the five-note shape on generated profiles.
func normalize(p *Profile) *Profile {
	for _, note := range defaultNotes {
		if len(p.SpecialNotes) >= 5 {
			break
		}
		if !contains(p.SpecialNotes, note) {
			p.SpecialNotes = append(p.SpecialNotes, note)
		}
	}
	if len(p.SpecialNotes) > 5 {
		p.SpecialNotes = p.SpecialNotes[:5]
	}
	return p
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
