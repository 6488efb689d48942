package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/reply-desk/internal/model"
)

// ListEmails fetches one page of emails with the given status.
//
// Older backends return every matching email as a bare array; in that
// case the page is cut locally so callers always see the paged shape.
func (c *Client) ListEmails(ctx context.Context, status model.EmailStatus, page, pageSize int) (model.EmailPage, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", string(status))
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var raw json.RawMessage
	if err := c.get(ctx, "/emails?"+q.Encode(), &raw); err != nil {
		return model.EmailPage{}, fmt.Errorf("listing emails: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var all []model.Email
		if err := json.Unmarshal(raw, &all); err != nil {
			return model.EmailPage{}, fmt.Errorf("decoding email list: %w", err)
		}
		return slicePage(all, page, pageSize), nil
	}

	var out model.EmailPage
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.EmailPage{}, fmt.Errorf("decoding email page: %w", err)
	}
	return out, nil
}

func slicePage(all []model.Email, page, pageSize int) model.EmailPage {
	if pageSize <= 0 {
		pageSize = len(all)
		if pageSize == 0 {
			pageSize = 1
		}
	}
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize
	out := model.EmailPage{
		Total:        total,
		TotalPages:   totalPages,
		Page:         page,
		TotalCount:   total,
		PendingCount: total,
	}
	start := (page - 1) * pageSize
	if start < 0 || start >= total {
		return out
	}
	end := min(start+pageSize, total)
	out.Data = append([]model.Email(nil), all[start:end]...)
	return out
}

// AnalyzeEmail classifies the email and suggests a reply.
func (c *Client) AnalyzeEmail(ctx context.Context, id int64, forceAI bool) (model.AnalysisResult, error) {
	body := struct {
		ForceAI bool `json:"force_ai"`
	}{ForceAI: forceAI}

	var out model.AnalysisResult
	if err := c.post(ctx, fmt.Sprintf("/emails/%d/analyze", id), body, &out); err != nil {
		return model.AnalysisResult{}, fmt.Errorf("analyzing email %d: %w", id, err)
	}
	return out, nil
}

// GenerateReply asks the backend for a fresh AI reply.
func (c *Client) GenerateReply(ctx context.Context, id int64) (string, error) {
	var out struct {
		Reply       string            `json:"reply"`
		ReplySource model.ReplySource `json:"reply_source"`
	}
	if err := c.post(ctx, fmt.Sprintf("/emails/%d/generate-reply", id), struct{}{}, &out); err != nil {
		return "", fmt.Errorf("generating reply for email %d: %w", id, err)
	}
	return out.Reply, nil
}

// Translate translates text from source to target language.
func (c *Client) Translate(ctx context.Context, text, source, target string) (string, error) {
	body := struct {
		Text       string `json:"text"`
		TargetLang string `json:"target_lang"`
		SourceLang string `json:"source_lang,omitempty"`
	}{Text: text, TargetLang: target, SourceLang: source}

	var out struct {
		Translation string `json:"translation"`
	}
	if err := c.post(ctx, "/emails/translate", body, &out); err != nil {
		return "", fmt.Errorf("translating to %s: %w", target, err)
	}
	return out.Translation, nil
}

// SendReply sends reply for the email and records the final category.
func (c *Client) SendReply(ctx context.Context, id int64, reply string, categoryID *int64) error {
	body := struct {
		Reply      string `json:"reply"`
		CategoryID *int64 `json:"category_id"`
	}{Reply: reply, CategoryID: categoryID}

	if err := c.post(ctx, fmt.Sprintf("/emails/%d/send", id), body, nil); err != nil {
		return fmt.Errorf("sending reply for email %d: %w", id, err)
	}
	return nil
}

// DeleteEmail removes the email from the pending queue.
func (c *Client) DeleteEmail(ctx context.Context, id int64) error {
	if err := c.delete(ctx, fmt.Sprintf("/emails/%d", id)); err != nil {
		return fmt.Errorf("deleting email %d: %w", id, err)
	}
	return nil
}

// SyncEmails asks the backend to pull new mail now.
func (c *Client) SyncEmails(ctx context.Context) error {
	if err := c.post(ctx, "/emails/sync", struct{}{}, nil); err != nil {
		return fmt.Errorf("syncing emails: %w", err)
	}
	return nil
}

