package uploadService

import (
	"VoiceAgentGolang/internal/api/upload"
	uploadRepository "VoiceAgentGolang/internal/api/upload/repository"
	"VoiceAgentGolang/internal/entity"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.ImageUploadToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*entity.ImageUploadToken)}
}

func (f *fakeTokenRepo) NewClient(tx bool) (uploadRepository.Client, error) {
	return uploadRepository.Client{
		Tokens:   f,
		Commit:   func() error { return nil },
		Rollback: func() error { return nil },
	}, nil
}

func (f *fakeTokenRepo) CreateToken(ctx context.Context, token entity.ImageUploadToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := token
	f.tokens[token.Token] = &copied
	return nil
}

func (f *fakeTokenRepo) GetToken(ctx context.Context, token string) (entity.ImageUploadToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.tokens[token]
	if !ok {
		return entity.ImageUploadToken{}, upload.ErrTokenNotFound
	}
	return *row, nil
}

func (f *fakeTokenRepo) GetLatestTokenByCallID(ctx context.Context, callID string) (entity.ImageUploadToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *entity.ImageUploadToken
	for _, row := range f.tokens {
		if row.CallID != callID {
			continue
		}
		if latest == nil || row.CreatedAt.After(latest.CreatedAt) {
			latest = row
		}
	}
	if latest == nil {
		return entity.ImageUploadToken{}, upload.ErrTokenNotFound
	}
	return *latest, nil
}

func (f *fakeTokenRepo) MarkTokenUsed(ctx context.Context, token, imageURL string, usedAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.tokens[token]
	if !ok || row.UsedAt != nil {
		return false, nil
	}
	row.UsedAt = &usedAt
	row.ImageURL = imageURL
	return true, nil
}

func (f *fakeTokenRepo) UpdateTokenAnalysis(ctx context.Context, token, summary, troubleshooting string, isAppliance bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.tokens[token]
	if !ok {
		return upload.ErrTokenNotFound
	}
	row.AnalysisSummary = summary
	row.Troubleshooting = troubleshooting
	row.IsApplianceImage = &isAppliance
	return nil
}

func (f *fakeTokenRepo) ResetToken(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.tokens[token]
	if !ok {
		return upload.ErrTokenNotFound
	}
	row.UsedAt = nil
	row.ImageURL = ""
	row.AnalysisSummary = ""
	row.Troubleshooting = ""
	row.IsApplianceImage = nil
	return nil
}

type fakeS3 struct{ uploads int }

func (f *fakeS3) UploadFile(file *multipart.FileHeader) (string, error) { return "", nil }
func (f *fakeS3) UploadFileFromBytes(data []byte, fileName string, contentType string) (string, error) {
	f.uploads++
	return "https://bucket.example.com/" + fileName, nil
}
func (f *fakeS3) PresignUrl(fileName string) (string, error) { return fileName, nil }
func (f *fakeS3) DeleteFile(fileName string) error           { return nil }

type fakeGemini struct {
	answer string
	err    error
}

func (f *fakeGemini) Generate(ctx context.Context, prompt string) (string, error) {
	return f.answer, f.err
}
func (f *fakeGemini) AnalyzeImage(ctx context.Context, base64Image string, prompt string) (string, error) {
	return f.answer, f.err
}
func (f *fakeGemini) Close() {}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeMailer) SendUploadLink(userEmail string, uploadURL string, applianceType string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, userEmail)
	return nil
}

type fakeRedis struct {
	mu    sync.Mutex
	store map[string]string
}

func newFakeRedis() *fakeRedis { return &fakeRedis{store: make(map[string]string)} }

func (f *fakeRedis) SetUploadStatus(ctx context.Context, callID string, status string, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.store[callID] = status
	return nil
}

func (f *fakeRedis) GetUploadStatus(ctx context.Context, callID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	val, ok := f.store[callID]
	if !ok {
		return "", redis.Nil
	}
	return val, nil
}

func (f *fakeRedis) DeleteUploadStatus(ctx context.Context, callID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.store, callID)
	return nil
}

type fakeUtils struct{ nextToken string }

func (f *fakeUtils) NewULIDFromTimestamp(t time.Time) (string, error) { return "01TEST", nil }
func (f *fakeUtils) NewUploadToken() string                           { return f.nextToken }
func (f *fakeUtils) ValidateImageFile(file *multipart.FileHeader) error {
	if file == nil {
		return errors.New("no file uploaded")
	}
	return nil
}
func (f *fakeUtils) ConvertFileToBase64(file multipart.File) (string, error) { return "", nil }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestService(repo *fakeTokenRepo, vision *fakeGemini) (*uploadService, *fakeRedis) {
	cache := newFakeRedis()
	svc := &uploadService{
		log:          testLogger(),
		uploadRepo:   repo,
		s3Client:     &fakeS3{},
		geminiClient: vision,
		smtpMailer:   &fakeMailer{},
		redisServer:  cache,
		utils:        &fakeUtils{nextToken: "tok123"},
		baseURL:      "http://localhost:3000",
		tokenTTL:     24 * time.Hour,
	}
	return svc, cache
}

func seedToken(repo *fakeTokenRepo, token, callID string, expiresAt time.Time, usedAt *time.Time) {
	repo.tokens[token] = &entity.ImageUploadToken{
		Token:         token,
		CallID:        callID,
		Email:         "caller@gmail.com",
		ApplianceType: "washer",
		CreatedAt:     time.Now().UTC(),
		ExpiresAt:     expiresAt,
		UsedAt:        usedAt,
	}
}

func TestCreateToken(t *testing.T) {
	repo := newFakeTokenRepo()
	svc, _ := newTestService(repo, &fakeGemini{})

	resp, err := svc.CreateToken(context.Background(), upload.CreateTokenRequest{
		CallID:        "call-1",
		Email:         "caller@gmail.com",
		ApplianceType: "washer",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Token != "tok123" {
		t.Errorf("Token = %q", resp.Token)
	}
	if resp.UploadURL != "http://localhost:3000/upload/tok123" {
		t.Errorf("UploadURL = %q", resp.UploadURL)
	}
	if _, ok := repo.tokens["tok123"]; !ok {
		t.Error("token not persisted")
	}
}

func TestHandleUploadTokenLifecycle(t *testing.T) {
	t.Run("expired token rejected", func(t *testing.T) {
		repo := newFakeTokenRepo()
		seedToken(repo, "tok", "call-1", time.Now().Add(-time.Hour), nil)
		svc, _ := newTestService(repo, &fakeGemini{})

		_, err := svc.HandleUpload(context.Background(), upload.UploadImageRequest{Token: "tok"})
		if !errors.Is(err, upload.ErrTokenExpired) {
			t.Errorf("err = %v, want ErrTokenExpired", err)
		}
	})

	t.Run("used token rejected", func(t *testing.T) {
		repo := newFakeTokenRepo()
		used := time.Now().UTC()
		seedToken(repo, "tok", "call-1", time.Now().Add(time.Hour), &used)
		svc, _ := newTestService(repo, &fakeGemini{})

		_, err := svc.HandleUpload(context.Background(), upload.UploadImageRequest{Token: "tok"})
		if !errors.Is(err, upload.ErrTokenAlreadyUsed) {
			t.Errorf("err = %v, want ErrTokenAlreadyUsed", err)
		}
	})

	t.Run("unknown token rejected", func(t *testing.T) {
		svc, _ := newTestService(newFakeTokenRepo(), &fakeGemini{})

		_, err := svc.HandleUpload(context.Background(), upload.UploadImageRequest{Token: "missing"})
		if !errors.Is(err, upload.ErrTokenNotFound) {
			t.Errorf("err = %v, want ErrTokenNotFound", err)
		}
	})
}

func TestStatus(t *testing.T) {
	t.Run("no token for call", func(t *testing.T) {
		svc, _ := newTestService(newFakeTokenRepo(), &fakeGemini{})

		resp, err := svc.Status(context.Background(), "call-x")
		if err != nil {
			t.Fatal(err)
		}
		if resp.TokenExists {
			t.Error("TokenExists = true for unknown call")
		}
	})

	t.Run("pending upload", func(t *testing.T) {
		repo := newFakeTokenRepo()
		seedToken(repo, "tok", "call-1", time.Now().Add(time.Hour), nil)
		svc, cache := newTestService(repo, &fakeGemini{})

		resp, err := svc.Status(context.Background(), "call-1")
		if err != nil {
			t.Fatal(err)
		}
		if !resp.TokenExists || resp.ImageUploaded || resp.AnalysisReady {
			t.Errorf("unexpected status: %+v", resp)
		}
		if _, ok := cache.store["call-1"]; !ok {
			t.Error("status not cached")
		}
	})

	t.Run("analysis ready", func(t *testing.T) {
		repo := newFakeTokenRepo()
		used := time.Now().UTC()
		seedToken(repo, "tok", "call-1", time.Now().Add(time.Hour), &used)
		isAppliance := true
		repo.tokens["tok"].AnalysisSummary = "E23 on display"
		repo.tokens["tok"].Troubleshooting = "Step 1: clean the filter"
		repo.tokens["tok"].IsApplianceImage = &isAppliance
		svc, _ := newTestService(repo, &fakeGemini{})

		resp, err := svc.Status(context.Background(), "call-1")
		if err != nil {
			t.Fatal(err)
		}
		if !resp.ImageUploaded || !resp.AnalysisReady {
			t.Errorf("unexpected status: %+v", resp)
		}
		if resp.AnalysisSummary != "E23 on display" {
			t.Errorf("AnalysisSummary = %q", resp.AnalysisSummary)
		}
	})
}

func TestResetForReupload(t *testing.T) {
	repo := newFakeTokenRepo()
	used := time.Now().UTC()
	seedToken(repo, "tok", "call-1", time.Now().Add(time.Hour), &used)
	repo.tokens["tok"].AnalysisSummary = "not an appliance"
	svc, cache := newTestService(repo, &fakeGemini{})
	cache.store["call-1"] = "stale"

	url, err := svc.ResetForReupload(context.Background(), "call-1")
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://localhost:3000/upload/tok" {
		t.Errorf("url = %q", url)
	}
	if repo.tokens["tok"].UsedAt != nil || repo.tokens["tok"].AnalysisSummary != "" {
		t.Error("token not reset")
	}
	if _, ok := cache.store["call-1"]; ok {
		t.Error("stale status cache not invalidated")
	}
}

func TestParseVisionResponse(t *testing.T) {
	t.Run("clean json", func(t *testing.T) {
		got := parseVisionResponse(`{"is_appliance_image": true, "summary": "E23 code visible", "troubleshooting": "Step 1: drain"}`, "washer")
		if !got.IsApplianceImage || got.Summary != "E23 code visible" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("fenced json with string boolean", func(t *testing.T) {
		got := parseVisionResponse("```json\n{\"is_appliance_image\": \"false\", \"summary\": \"a cat\", \"troubleshooting\": \"\"}\n```", "washer")
		if got.IsApplianceImage {
			t.Error("string false not honored")
		}
		if got.Summary != "a cat" {
			t.Errorf("Summary = %q", got.Summary)
		}
	})

	t.Run("plain text keeps content and assumes appliance", func(t *testing.T) {
		got := parseVisionResponse("The washer drum looks rusted near the seal.", "washer")
		if !got.IsApplianceImage {
			t.Error("unparseable answer should default to appliance")
		}
		if got.Summary == "" {
			t.Error("raw text lost")
		}
	})
}
