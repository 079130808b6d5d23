package ai

import "context"

// ImageVerification is the outcome of a listing image check.
type ImageVerification struct {
	Verified             bool    `json:"verified"`
	FakeScore            float64 `json:"fake_score"`
	Confidence           float64 `json:"confidence"`
	ManualReviewRequired bool    `json:"manual_review_required"`
}

// ImageVerifier checks listing images for fakes. Consumed best-effort:
// callers log failures and fall back to unverified.
type ImageVerifier interface {
	VerifyListingImage(ctx context.Context, imageURL, title string) (*ImageVerification, error)
}

// AbuseResult is the outcome of a text content check.
type AbuseResult struct {
	Abusive    bool    `json:"abusive"`
	AbuseScore float64 `json:"abuse_score"`
}

// AbuseDetector flags abusive text in titles and descriptions.
type AbuseDetector interface {
	DetectAbuse(ctx context.Context, text string) (*AbuseResult, error)
}

// MockVerifier returns fixed scores until a real detection API is wired up.
type MockVerifier struct{}

// NewMockVerifier builds the stand-in verifier.
func NewMockVerifier() *MockVerifier {
	return &MockVerifier{}
}

func (m *MockVerifier) VerifyListingImage(ctx context.Context, imageURL, title string) (*ImageVerification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &ImageVerification{
		Verified:             true,
		FakeScore:            0.15,
		Confidence:           0.85,
		ManualReviewRequired: false,
	}, nil
}

// MockAbuseDetector returns fixed scores until a real detection API is wired up.
type MockAbuseDetector struct{}

// NewMockAbuseDetector builds the stand-in detector.
func NewMockAbuseDetector() *MockAbuseDetector {
	return &MockAbuseDetector{}
}

func (m *MockAbuseDetector) DetectAbuse(ctx context.Context, text string) (*AbuseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &AbuseResult{
		Abusive:    false,
		AbuseScore: 0.05,
	}, nil
}
