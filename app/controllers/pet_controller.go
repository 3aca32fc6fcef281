package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/certificate"
	"github.com/wanpass/wanpass/internal/pkg/classify"
	"github.com/wanpass/wanpass/internal/pkg/profile"
	"github.com/wanpass/wanpass/internal/pkg/storage"
)

// adhocEventCode groups blobs from the standalone generation flow, which has
// no owning event.
const adhocEventCode = "adhoc"

// PetController handles the AI-assisted flows: photo analysis, one-shot
// certificate generation and profile suggestion.
type PetController struct {
	classifier classify.Classifier
	profiles   *profile.Service
	compositor *certificate.Generator
	blob       storage.Blob
}

func NewPetController(classifier classify.Classifier, profiles *profile.Service, compositor *certificate.Generator, blob storage.Blob) *PetController {
	return &PetController{classifier: classifier, profiles: profiles, compositor: compositor, blob: blob}
}

// HandleAnalyzePet runs the recognition backend over one photo.
// POST /api/analyze-pet (multipart field: file)
func (pc *PetController) HandleAnalyzePet(c *fiber.Ctx) error {
	photo, err := readPhotoForm(c, "file", true)
	if err != nil {
		return jsonError(c, err)
	}

	analysis, err := pc.classifier.Identify(c.Context(), photo)
	if err != nil {
		log.Errorf("[Pet] Analysis failed: %v", err)
		return jsonError(c, err)
	}
	return c.JSON(analysis)
}

// HandleGenerateLicense is the full server-side path: classify the photo,
// store the original, composite the certificate, store it and return the
// result. Used when the client does not render the certificate itself.
// POST /api/generate-license (multipart)
func (pc *PetController) HandleGenerateLicense(c *fiber.Ctx) error {
	photo, err := readPhotoForm(c, "pet_image", true)
	if err != nil {
		return jsonError(c, err)
	}

	ownerName := c.FormValue("owner_name")
	petName := c.FormValue("pet_name")
	issueLocation := c.FormValue("issue_location")
	gender := c.FormValue("gender")
	if ownerName == "" || petName == "" || issueLocation == "" || gender == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "owner_name, pet_name, issue_location and gender are required"})
	}
	issueDate, err := time.Parse("2006-01-02", c.FormValue("issue_date"))
	if err != nil {
		return jsonError(c, fmt.Errorf("%w: issue_date must be YYYY-MM-DD", apperrors.ErrValidation))
	}

	ctx := c.Context()
	analysis, err := pc.classifier.Identify(ctx, photo)
	if err != nil {
		log.Errorf("[Pet] Analysis failed: %v", err)
		return jsonError(c, err)
	}

	originalUpload, err := pc.blob.Put(ctx, photo, storage.OriginalKey(adhocEventCode), "image/jpeg")
	if err != nil {
		log.Errorf("[Pet] Original upload failed: %v", err)
		return jsonError(c, err)
	}

	color := c.FormValue("color")
	if color == "" {
		color = analysis.Color
	}
	rendered, err := pc.compositor.Generate(photo, certificate.Fields{
		OwnerName:     ownerName,
		PetName:       petName,
		IssueLocation: issueLocation,
		IssueDate:     issueDate,
		AnimalType:    analysis.AnimalType,
		Gender:        gender,
		Color:         color,
		FavoriteWord:  c.FormValue("favorite_word"),
		MicrochipNo:   c.FormValue("microchip_no"),
	})
	if err != nil {
		log.Errorf("[Pet] Certificate render failed: %v", err)
		pc.discard(c, originalUpload.Key)
		return jsonError(c, err)
	}

	licenseUpload, err := pc.blob.Put(ctx, rendered, storage.LicenseKey(adhocEventCode), "image/png")
	if err != nil {
		log.Errorf("[Pet] Certificate upload failed: %v", err)
		pc.discard(c, originalUpload.Key)
		return jsonError(c, err)
	}

	return c.JSON(fiber.Map{
		"license_image_url":  licenseUpload.URL,
		"original_image_url": originalUpload.URL,
		"pet_info":           analysis,
		"key":                licenseUpload.Key,
	})
}

// HandleGenerateProfile suggests certificate fields from classifier output.
// Generation failures never surface; the fixed default persona comes back
// instead.
// POST /api/generate-profile (form)
func (pc *PetController) HandleGenerateProfile(c *fiber.Ctx) error {
	animalType := c.FormValue("animal_type")
	breed := c.FormValue("breed")
	if animalType == "" || breed == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "animal_type and breed are required"})
	}

	var features *classify.ExtraFeatures
	if hasExtraFeatureFields(c) {
		features = &classify.ExtraFeatures{
			Expression:  c.FormValue("expression"),
			Posture:     c.FormValue("posture"),
			FurAmount:   c.FormValue("fur_amount"),
			Size:        c.FormValue("size"),
			AgeEstimate: c.FormValue("age_estimate"),
			OtherTraits: splitTraits(c.FormValue("other_traits")),
		}
	}

	result := pc.profiles.Generate(c.Context(), profile.Request{
		AnimalType:    animalType,
		Breed:         breed,
		Color:         c.FormValue("color"),
		ExtraFeatures: features,
	})
	return c.JSON(result)
}

func (pc *PetController) discard(c *fiber.Ctx, key string) {
	if err := pc.blob.Delete(c.Context(), key); err != nil {
		log.Warnf("[Pet] Compensating blob delete %s failed: %v", key, err)
	}
}

func hasExtraFeatureFields(c *fiber.Ctx) bool {
	for _, f := range []string{"expression", "posture", "fur_amount", "size", "age_estimate", "other_traits"} {
		if c.FormValue(f) != "" {
			return true
		}
	}
	return false
}

func splitTraits(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
