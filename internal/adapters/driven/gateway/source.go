package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/folio-labs/bindery-core/internal/core/domain"
	"github.com/folio-labs/bindery-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.MessageSource = (*Source)(nil)

// Source implements driven.MessageSource against the channel gateway.
// Each call authenticates with the channel's own credentials, so one
// Source instance serves every configured channel.
type Source struct {
	client *Client
}

// NewSource creates a new message source backed by the gateway at baseURL.
func NewSource(baseURL string) *Source {
	return &Source{client: NewClient(baseURL)}
}

// ListChannelMessages returns up to limit file-bearing messages with ids
// strictly below beforeID. The gateway returns them newest first.
func (s *Source) ListChannelMessages(ctx context.Context, channel *domain.Channel, limit int, beforeID int64) ([]domain.RawFile, error) {
	path := fmt.Sprintf("/channels/%s/messages?limit=%d", url.PathEscape(channel.Ref), limit)
	if beforeID > 0 {
		path += fmt.Sprintf("&before_id=%d", beforeID)
	}

	resp, err := s.client.doRequest(ctx, channel.Credentials.Token, http.MethodGet, path)
	if err != nil {
		return nil, fmt.Errorf("list messages for %s: %w", channel.Ref, err)
	}
	defer resp.Body.Close()

	var page messagePage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}

	files := make([]domain.RawFile, 0, len(page.Messages))
	for _, msg := range page.Messages {
		files = append(files, domain.RawFile{
			MessageID: msg.MessageID,
			FileName:  msg.FileName,
			MimeType:  msg.MimeType,
			SizeBytes: msg.SizeBytes,
		})
	}

	return files, nil
}

// Download fetches the media payload of one message.
func (s *Source) Download(ctx context.Context, channel *domain.Channel, messageID int64) ([]byte, error) {
	path := fmt.Sprintf("/channels/%s/messages/%d/media", url.PathEscape(channel.Ref), messageID)

	resp, err := s.client.doRequest(ctx, channel.Credentials.Token, http.MethodGet, path)
	if err != nil {
		return nil, fmt.Errorf("download message %d from %s: %w", messageID, channel.Ref, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}

	return data, nil
}

// Ping checks if the gateway is reachable.
func (s *Source) Ping(ctx context.Context) error {
	resp, err := s.client.doRequest(ctx, "", http.MethodGet, "/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
