package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wanpass/wanpass/internal/pkg/apperrors"
	"github.com/wanpass/wanpass/internal/pkg/env"
)

const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
	openAIModel    = "gpt-4o-mini"
)

// OpenAI generates pet profiles through the OpenAI chat completions API.
type OpenAI struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewOpenAI creates a profile generator backed by the OpenAI API, or nil
// when OPENAI_API_KEY is not configured (the service then serves defaults).
func NewOpenAI() *OpenAI {
	apiKey := env.GetEnv("OPENAI_API_KEY", "")
	if apiKey == "" {
		return nil
	}
	return &OpenAI{
		apiKey:   apiKey,
		endpoint: openAIEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for a certificate persona matching the classifier
// output.
func (o *OpenAI) Generate(ctx context.Context, req Request) (*Profile, error) {
	body := chatRequest{
		Model: openAIModel,
		Messages: []chatMessage{
			{Role: "system", Content: "あなたはペット免許証作成のアシスタントです。必ずJSONフォーマットで回答してください。"},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature: 0.8,
		MaxTokens:   500,
	}
	body.ResponseFormat.Type = "json_object"

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", apperrors.ErrUpstream, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: profile request failed: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: profile generator returned status %d", apperrors.ErrUpstream, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", apperrors.ErrUpstream, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: profile generator returned no choices", apperrors.ErrUpstream)
	}

	var profile Profile
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &profile); err != nil {
		return nil, fmt.Errorf("%w: profile content is not valid JSON: %v", apperrors.ErrUpstream, err)
	}
	return &profile, nil
}

// buildPrompt renders the generation instructions for one pet.
func buildPrompt(req Request) string {
	var b strings.Builder

	color := req.Color
	if color == "" {
		color = "不明"
	}

	fmt.Fprintf(&b, "あなたはペット健康免許証を作成するアシスタントです。\n")
	fmt.Fprintf(&b, "以下のペット情報を基に、免許証に記載する情報を日本語で生成してください。\n\n")
	fmt.Fprintf(&b, "ペット情報:\n- 動物種別: %s\n- 品種: %s\n- 毛色: %s\n", req.AnimalType, req.Breed, color)

	if f := req.ExtraFeatures; f != nil {
		if f.Expression != "" {
			fmt.Fprintf(&b, "- 表情: %s\n", f.Expression)
		}
		if f.Posture != "" {
			fmt.Fprintf(&b, "- 姿勢: %s\n", f.Posture)
		}
		if f.FurAmount != "" {
			fmt.Fprintf(&b, "- 毛量/毛質: %s\n", f.FurAmount)
		}
		if f.Size != "" {
			fmt.Fprintf(&b, "- サイズ: %s\n", f.Size)
		}
		if f.AgeEstimate != "" {
			fmt.Fprintf(&b, "- 推定年齢: %s\n", f.AgeEstimate)
		}
		if len(f.OtherTraits) > 0 {
			fmt.Fprintf(&b, "- その他の特徴: %s\n", strings.Join(f.OtherTraits, "、"))
		}
	}

	fmt.Fprintf(&b, `
以下の項目を生成してください:
1. gender: 性別（オスまたはメス）- ランダムに選択
2. pet_name: ペットの名前 - %sや%sに合う可愛らしい日本語の名前（2〜8文字）
3. owner_name: 飼い主のハンドルネーム - SNSで使うような親しみやすいニックネーム
4. special_notes: 特記事項 - そのペットの性格や特徴を表す短い言葉を5つ（各3〜5文字）
5. favorite_word: お好きな一言 - そのペットらしいキャッチフレーズ（15文字以内）

JSONフォーマットで出力してください:
{"gender": "オス or メス", "pet_name": "ペット名", "owner_name": "ハンドルネーム", "special_notes": ["特徴1", "特徴2", "特徴3", "特徴4", "特徴5"], "favorite_word": "キャッチフレーズ"}`,
		req.AnimalType, req.Breed)

	return b.String()
}
