package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templui/fliptrack/internal/validation"
)

func TestShareServiceShare(t *testing.T) {
	ctx := context.Background()

	t.Run("emails the report", func(t *testing.T) {
		s := newTestServices(t)

		res, err := s.share.Share(ctx, 1, "owner@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, ShareEmail, res.Method)
		assert.True(t, res.Attached)
		assert.Equal(t, "Report shared successfully", res.Message)
		assert.Equal(t, "12_Oak_Street_Report.txt", res.Filename)
		assert.Empty(t, res.Text)
	})

	t.Run("falls back to clipboard without a recipient", func(t *testing.T) {
		s := newTestServices(t)

		res, err := s.share.Share(ctx, 1, "", false)
		require.NoError(t, err)
		assert.Equal(t, ShareClipboard, res.Method)
		assert.Equal(t, "Report copied to clipboard", res.Message)
		assert.Contains(t, res.Text, "12 Oak Street")
	})

	t.Run("falls back to clipboard when email is off", func(t *testing.T) {
		s := newTestServices(t)
		s.share.email = NewEmailService("", "reports@example.com", "FlipTrack", false)

		res, err := s.share.Share(ctx, 1, "owner@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, ShareClipboard, res.Method)
	})

	t.Run("validates the recipient", func(t *testing.T) {
		s := newTestServices(t)

		_, err := s.share.Share(ctx, 1, "not-an-address", false)
		var verr *validation.Error
		assert.ErrorAs(t, err, &verr)
	})
}

// fakeSender records each request and answers with fail.
type fakeSender struct {
	requests []*resend.SendEmailRequest
	fail     func(*resend.SendEmailRequest) error
}

func (f *fakeSender) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.requests = append(f.requests, params)
	if f.fail != nil {
		if err := f.fail(params); err != nil {
			return nil, err
		}
	}
	return &resend.SendEmailResponse{Id: "msg_1"}, nil
}

func TestShareServiceEmailFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("retries without the attachment", func(t *testing.T) {
		s := newTestServices(t)
		sender := &fakeSender{fail: func(p *resend.SendEmailRequest) error {
			if len(p.Attachments) > 0 {
				return errors.New("attachment rejected")
			}
			return nil
		}}
		s.share.email = NewEmailServiceWithSender(sender, "reports@example.com", "FlipTrack")

		res, err := s.share.Share(ctx, 1, "owner@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, ShareEmail, res.Method)
		assert.False(t, res.Attached)
		assert.False(t, res.Failed)
		assert.Equal(t, "Report shared successfully", res.Message)

		require.Len(t, sender.requests, 2)
		require.Len(t, sender.requests[0].Attachments, 1)
		assert.Equal(t, "12_Oak_Street_Report.txt", sender.requests[0].Attachments[0].Filename)
		assert.Empty(t, sender.requests[1].Attachments)
	})

	t.Run("reports a failed email", func(t *testing.T) {
		s := newTestServices(t)
		sender := &fakeSender{fail: func(*resend.SendEmailRequest) error {
			return errors.New("smtp unavailable")
		}}
		s.share.email = NewEmailServiceWithSender(sender, "reports@example.com", "FlipTrack")

		res, err := s.share.Share(ctx, 1, "owner@example.com", true)
		require.NoError(t, err)
		assert.Equal(t, ShareClipboard, res.Method)
		assert.True(t, res.Failed)
		assert.Equal(t, "Failed to share report", res.Message)
		assert.Contains(t, res.Error, "smtp unavailable")
		assert.Contains(t, res.Text, "12 Oak Street")
		assert.Len(t, sender.requests, 2)
	})

	t.Run("reports a cancelled share", func(t *testing.T) {
		s := newTestServices(t)
		sender := &fakeSender{fail: func(*resend.SendEmailRequest) error {
			return context.Canceled
		}}
		s.share.email = NewEmailServiceWithSender(sender, "reports@example.com", "FlipTrack")

		res, err := s.share.Share(ctx, 1, "owner@example.com", true)
		assert.ErrorIs(t, err, ErrShareCancelled)
		assert.Nil(t, res)
		assert.Len(t, sender.requests, 1)
	})

	t.Run("clipboard without a recipient is not a failure", func(t *testing.T) {
		s := newTestServices(t)
		sender := &fakeSender{}
		s.share.email = NewEmailServiceWithSender(sender, "reports@example.com", "FlipTrack")

		res, err := s.share.Share(ctx, 1, "", false)
		require.NoError(t, err)
		assert.Equal(t, ShareClipboard, res.Method)
		assert.False(t, res.Failed)
		assert.Equal(t, "Report copied to clipboard", res.Message)
		assert.Empty(t, sender.requests)
	})
}

func TestShareServiceLink(t *testing.T) {
	s := newTestServices(t)

	link, err := s.share.Link(2)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "http://localhost:8090/share/"))

	id, err := s.share.Resolve(strings.TrimPrefix(link, "http://localhost:8090/share/"))
	require.NoError(t, err)
	assert.Equal(t, 2, id)

	_, err = s.share.Resolve("garbage")
	assert.ErrorIs(t, err, ErrInvalidShareLink)

	other := NewShareService(s.reports, nil, "another-secret", time.Hour, "http://localhost:8090")
	token := strings.TrimPrefix(link, "http://localhost:8090/share/")
	_, err = other.Resolve(token)
	assert.ErrorIs(t, err, ErrInvalidShareLink)

	expired := NewShareService(s.reports, nil, "test-secret", -time.Minute, "http://localhost:8090")
	old, err := expired.Link(2)
	require.NoError(t, err)
	_, err = s.share.Resolve(strings.TrimPrefix(old, "http://localhost:8090/share/"))
	assert.ErrorIs(t, err, ErrInvalidShareLink)
}
