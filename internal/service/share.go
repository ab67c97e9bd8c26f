package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/templui/fliptrack/internal/report"
	"github.com/templui/fliptrack/internal/validation"
)

const shareTokenPurpose = "report_share"

var (
	ErrShareCancelled   = errors.New("share cancelled")
	ErrInvalidShareLink = errors.New("invalid or expired share link")
)

type ShareMethod string

const (
	ShareEmail     ShareMethod = "email"
	ShareClipboard ShareMethod = "clipboard"
)

// ShareResult tells the client how the report went out. For the clipboard
// method, Text is what the client copies.
type ShareResult struct {
	Method   ShareMethod `json:"method"`
	Attached bool        `json:"attached"`
	Link     string      `json:"link"`
	Filename string      `json:"filename"`
	Text     string      `json:"text,omitempty"`
	Message  string      `json:"message"`
	Failed   bool        `json:"failed,omitempty"`
	Error    string      `json:"error,omitempty"`
}

type ShareService struct {
	reports *ReportService
	email   *EmailService
	secret  []byte
	expiry  time.Duration
	appURL  string
}

func NewShareService(reports *ReportService, email *EmailService, secret string, expiry time.Duration, appURL string) *ShareService {
	return &ShareService{
		reports: reports,
		email:   email,
		secret:  []byte(secret),
		expiry:  expiry,
		appURL:  strings.TrimSuffix(appURL, "/"),
	}
}

// Share sends the text report to recipient by email, with the report attached
// when attach is set. If the attachment is refused the email is retried without
// it. Without a recipient or a working email channel the result falls back to
// the clipboard. A failed email also falls back to the clipboard but is
// reported with Failed set. A cancelled request returns ErrShareCancelled.
func (s *ShareService) Share(ctx context.Context, projectID int, recipient string, attach bool) (*ShareResult, error) {
	project, r, err := s.reports.Generate(ctx, projectID)
	if err != nil {
		return nil, err
	}

	text := report.Text(r)
	filename := report.Filename(project.Address)

	link, err := s.Link(projectID)
	if err != nil {
		return nil, err
	}

	res := &ShareResult{Link: link, Filename: filename}

	if recipient != "" && s.email.Enabled() {
		err = validation.ValidateEmail(recipient)
		if err != nil {
			return nil, err
		}

		err = s.sendEmail(ctx, recipient, project.Address, text, link, filename, attach)
		if err == nil {
			res.Method = ShareEmail
			res.Attached = attach
			res.Message = "Report shared successfully"
			return res, nil
		}

		var retryErr *attachmentRetry
		if errors.As(err, &retryErr) {
			res.Method = ShareEmail
			res.Message = "Report shared successfully"
			return res, nil
		}
		if isCancelled(ctx, err) {
			return nil, ErrShareCancelled
		}
		slog.Warn("report email failed, falling back to clipboard", "error", err, "project_id", projectID)

		res.Method = ShareClipboard
		res.Text = text
		res.Failed = true
		res.Error = err.Error()
		res.Message = "Failed to share report"
		return res, nil
	}

	res.Method = ShareClipboard
	res.Text = text
	res.Message = "Report copied to clipboard"
	return res, nil
}

// attachmentRetry marks a send that only succeeded without the attachment.
type attachmentRetry struct{ cause error }

func (e *attachmentRetry) Error() string { return "sent without attachment: " + e.cause.Error() }

func (s *ShareService) sendEmail(ctx context.Context, to, address, text, link, filename string, attach bool) error {
	if !attach {
		return s.email.SendReport(ctx, to, address, text, link, nil)
	}

	err := s.email.SendReport(ctx, to, address, text, link, &Attachment{
		Filename:    filename,
		ContentType: "text/plain",
		Content:     []byte(text),
	})
	if err == nil || isCancelled(ctx, err) {
		return err
	}

	slog.Warn("report email with attachment failed, retrying without", "error", err)
	retryErr := s.email.SendReport(ctx, to, address, text, link, nil)
	if retryErr != nil {
		return retryErr
	}
	return &attachmentRetry{cause: err}
}

// Link returns a signed, expiring URL to the text report.
func (s *ShareService) Link(projectID int) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"project_id": projectID,
		"purpose":    shareTokenPurpose,
		"exp":        now.Add(s.expiry).Unix(),
		"iat":        now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign share link: %w", err)
	}

	return s.appURL + "/share/" + tokenString, nil
}

// Resolve verifies a share token and returns the project it grants access to.
func (s *ShareService) Resolve(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidShareLink, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid || claims["purpose"] != shareTokenPurpose {
		return 0, ErrInvalidShareLink
	}

	// JSON numbers decode as float64
	id, ok := claims["project_id"].(float64)
	if !ok || id <= 0 {
		return 0, ErrInvalidShareLink
	}
	return int(id), nil
}

func isCancelled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}
