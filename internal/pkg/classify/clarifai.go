package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/env"
)

const clarifaiEndpoint = "https://api.clarifai.com/v2/models/general-image-recognition/outputs"

// Clarifai identifies pets through the Clarifai general recognition model.
type Clarifai struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewClarifai creates a classifier backed by the Clarifai API. The key comes
// from CLARIFAI_API_KEY.
func NewClarifai() *Clarifai {
	return &Clarifai{
		apiKey:   env.GetEnv("CLARIFAI_API_KEY", ""),
		endpoint: clarifaiEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type clarifaiImage struct {
	Base64 string `json:"base64"`
}

type clarifaiInput struct {
	Data struct {
		Image clarifaiImage `json:"image"`
	} `json:"data"`
}

type clarifaiRequest struct {
	Inputs []clarifaiInput `json:"inputs"`
}

type concept struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type clarifaiResponse struct {
	Outputs []struct {
		Data struct {
			Concepts []concept `json:"concepts"`
		} `json:"data"`
	} `json:"outputs"`
}

// Identify sends the photo to the recognition model and reduces the returned
// concepts to a species verdict.
func (c *Clarifai) Identify(ctx context.Context, photo []byte) (*Analysis, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: CLARIFAI_API_KEY is not set", apperrors.ErrUpstream)
	}

	var reqBody clarifaiRequest
	reqBody.Inputs = make([]clarifaiInput, 1)
	reqBody.Inputs[0].Data.Image = clarifaiImage{Base64: base64.StdEncoding.EncodeToString(photo)}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", apperrors.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: classifier request failed: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: classifier returned status %d", apperrors.ErrUpstream, resp.StatusCode)
	}

	var parsed clarifaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode classifier response: %v", apperrors.ErrUpstream, err)
	}
	if len(parsed.Outputs) == 0 {
		return nil, fmt.Errorf("%w: classifier returned no outputs", apperrors.ErrUpstream)
	}

	return reduceConcepts(parsed.Outputs[0].Data.Concepts), nil
}

// reduceConcepts picks the species from the top recognition concepts.
func reduceConcepts(concepts []concept) *Analysis {
	analysis := &Analysis{
		AnimalType: "不明",
		Breed:      "ミックス",
	}

	limit := len(concepts)
	if limit > 10 {
		limit = 10
	}
	for _, c := range concepts[:limit] {
		name := strings.ToLower(c.Name)
		switch {
		case strings.Contains(name, "dog"), strings.Contains(name, "canine"), strings.Contains(name, "puppy"):
			analysis.AnimalType = "犬"
		case strings.Contains(name, "cat"), strings.Contains(name, "feline"), strings.Contains(name, "kitten"):
			analysis.AnimalType = "猫"
		default:
			continue
		}
		analysis.Confidence = c.Value
		analysis.GeneralConfidence = c.Value
		break
	}

	return analysis
}
