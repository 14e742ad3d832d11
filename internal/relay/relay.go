package relay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	app_errors "symptom-checker/backend/internal/errors"
	"symptom-checker/backend/internal/model"
)

// maxImageBody caps the size of an image generation response.
const maxImageBody = 1 << 20

// Options configures a Relay.
type Options struct {
	LineMode  LineMode
	ChunkSize int
}

// Relay translates upstream responses into what the caller receives.
type Relay struct {
	opts Options
}

func New(opts Options) *Relay {
	return &Relay{opts: opts}
}

// Result holds exactly one of Stream (chat) or Image (image).
type Result struct {
	Stream *TokenStream
	Image  *model.ImageResult
}

// Forward handles a response according to the capability that produced it.
func (r *Relay) Forward(resp *http.Response, capability model.Capability) (*Result, error) {
	switch capability {
	case model.CapabilityChat:
		stream, err := r.Stream(resp)
		if err != nil {
			return nil, err
		}
		return &Result{Stream: stream}, nil
	case model.CapabilityImage:
		img, err := r.Image(resp)
		if err != nil {
			return nil, err
		}
		return &Result{Image: img}, nil
	default:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %q", app_errors.ErrInvalidCapability, capability)
	}
}

// Stream checks the status and hands the body to a TokenStream.
func (r *Relay) Stream(resp *http.Response) (*TokenStream, error) {
	if err := CheckStatus(resp); err != nil {
		return nil, err
	}
	return NewTokenStream(resp.Body, r.opts.LineMode, r.opts.ChunkSize), nil
}

type imageGenerationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// Image decodes an image generation response and wraps its first URL.
func (r *Relay) Image(resp *http.Response) (*model.ImageResult, error) {
	if err := CheckStatus(resp); err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBody))
	if err != nil {
		return nil, fmt.Errorf("could not read image response: %w", err)
	}

	var parsed imageGenerationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: could not decode image response: %v", app_errors.ErrDataShape, err)
	}
	if len(parsed.Data) == 0 || parsed.Data[0].URL == "" {
		return nil, fmt.Errorf("%w: image response has no url", app_errors.ErrDataShape)
	}
	return model.NewImageResult(parsed.Data[0].URL), nil
}
