package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/profile"
)

func TestAnalyzePet(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/api/analyze-pet", nil, map[string][]byte{"file": pngBytes(t)})
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "犬", body["animal_type"])
	assert.Equal(t, "柴犬", body["breed"])
}

func TestAnalyzePetUpstreamFailure(t *testing.T) {
	env := newTestEnvWith(t,
		&stubClassifier{err: fmt.Errorf("%w: recognition unavailable", apperrors.ErrUpstream)},
		&stubNarrator{err: fmt.Errorf("unused")},
	)

	req := multipartRequest(t, "/api/analyze-pet", nil, map[string][]byte{"file": pngBytes(t)})
	resp, _ := env.do(t, req)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestAnalyzePetRequiresFile(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/api/analyze-pet", nil, nil)
	resp, _ := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateLicense(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/api/generate-license", map[string]string{
		"owner_name":     "わんこの母",
		"pet_name":       "ポチ",
		"issue_location": "渋谷",
		"issue_date":     "2026-09-01",
		"gender":         "オス",
	}, map[string][]byte{"pet_image": pngBytes(t)})
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, body["license_image_url"], "events/adhoc/licenses/")
	assert.Contains(t, body["original_image_url"], "events/adhoc/originals/")
	petInfo := body["pet_info"].(map[string]interface{})
	assert.Equal(t, "犬", petInfo["animal_type"])

	// the stored certificate is a decodable image of the expected size
	key := body["key"].(string)
	data, ok := env.blob.objects[key]
	require.True(t, ok)
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 680, img.Bounds().Dx())
	assert.Equal(t, 430, img.Bounds().Dy())
}

func TestGenerateLicenseRequiresFields(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/api/generate-license", map[string]string{
		"owner_name": "わんこの母",
	}, map[string][]byte{"pet_image": pngBytes(t)})
	resp, _ := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateLicenseRejectsBadIssueDate(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/api/generate-license", map[string]string{
		"owner_name":     "わんこの母",
		"pet_name":       "ポチ",
		"issue_location": "渋谷",
		"issue_date":     "09/01/2026",
		"gender":         "オス",
	}, map[string][]byte{"pet_image": pngBytes(t)})
	resp, _ := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateProfileFromNarrator(t *testing.T) {
	env := newTestEnvWith(t, &stubClassifier{analysis: dogAnalysis()}, &stubNarrator{
		profile: &profile.Profile{
			Gender:       "メス",
			PetName:      "ハナ",
			OwnerName:    "猫のしもべ",
			SpecialNotes: []string{"甘えん坊", "早起き", "箱が好き", "高い所が好き", "魚に目がない"},
			FavoriteWord: "にゃー",
		},
	})

	req := multipartRequest(t, "/api/generate-profile", map[string]string{
		"animal_type": "猫",
		"breed":       "三毛猫",
	}, nil)
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ハナ", body["pet_name"])
	assert.Len(t, body["special_notes"], 5)
}

func TestGenerateProfileFallsBackToDefault(t *testing.T) {
	env := newTestEnv(t) // narrator always fails

	req := multipartRequest(t, "/api/generate-profile", map[string]string{
		"animal_type": "犬",
		"breed":       "柴犬",
		"other_traits": strings.Join([]string{"ふわふわ", "人懐こい"}, ","),
	}, nil)
	resp, body := env.do(t, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ポチ", body["pet_name"])
	assert.Equal(t, "元気いっぱい！", body["favorite_word"])
}

func TestGenerateProfileRequiresBreed(t *testing.T) {
	env := newTestEnv(t)

	req := multipartRequest(t, "/api/generate-profile", map[string]string{"animal_type": "犬"}, nil)
	resp, _ := env.do(t, req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
