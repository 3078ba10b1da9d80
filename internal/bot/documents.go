package bot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"inviterbot/internal/lookup"
	"inviterbot/internal/models"
)

// handleDocument processes an uploaded CSV of phone numbers: runs the
// lookup, stores the results in the admin's session and replies with a
// summary plus the results CSV.
func (b *Bot) handleDocument(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID
	document := message.Document

	if !strings.HasSuffix(strings.ToLower(document.FileName), ".csv") {
		b.sendText(chatID, "Please send a valid CSV file.")
		return
	}

	settings, err := b.store.Settings(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if settings.ApifyAPIToken == "" {
		b.sendText(chatID, "Please set the Apify API Token in Settings first.")
		return
	}

	data, err := b.downloadFile(ctx, document.FileID)
	if err != nil {
		b.logger.Error("Failed to download CSV", zap.String("file_name", document.FileName), zap.Error(err))
		b.sendText(chatID, "Failed to download the CSV file. Please try again.")
		return
	}

	phoneNumbers, err := lookup.ReadPhoneNumbers(bytes.NewReader(data))
	if err != nil {
		b.logger.Error("Failed to parse CSV", zap.String("file_name", document.FileName), zap.Error(err))
		b.sendText(chatID, "The CSV file could not be parsed.")
		return
	}
	if len(phoneNumbers) == 0 {
		b.sendText(chatID, "The CSV file is empty or invalid.")
		return
	}

	b.sendText(chatID, "Processing your CSV file. Please wait...")

	checker := lookup.NewChecker(b.newProvider(settings.ApifyAPIToken), b.logger)
	results := checker.Check(ctx, phoneNumbers)

	if err := b.store.SetSession(ctx, userID, models.SessionRecord{Results: results}); err != nil {
		b.replyError(chatID, err)
		return
	}

	registered := 0
	for _, result := range results {
		if result.IsRegistered {
			registered++
		}
	}
	b.sendText(chatID, fmt.Sprintf("Processing complete!\n\nTotal numbers: %d\nRegistered on Telegram: %d\nNot registered: %d",
		len(results), registered, len(results)-registered))

	csvData, err := lookup.WriteResults(results)
	if err != nil {
		b.logger.Error("Failed to render results CSV", zap.Error(err))
		return
	}
	b.sendDocument(chatID, fmt.Sprintf("telegram_results_%d.csv", userID), csvData,
		"These are the lookup results for your phone numbers.")
}

// fileDownloadClient bounds Bot API file downloads so a stalled transfer
// cannot hold up update handling indefinitely.
var fileDownloadClient = &http.Client{Timeout: 5 * time.Minute}

// downloadFile fetches an uploaded file's content from the Bot API.
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if b.api == nil {
		return nil, fmt.Errorf("bot API not available")
	}

	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to get file URL: %w", err)
	}
	return fetchFile(ctx, url)
}

// fetchFile retrieves a file over HTTP using the bounded download client.
func fetchFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build file request: %w", err)
	}

	resp, err := fileDownloadClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
