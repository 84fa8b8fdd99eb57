package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"

	"momentum/internal/adapters/email"
)

// EmailBackupDeps holds dependencies for mailing an export.
type EmailBackupDeps struct {
	Transfer   TransferDeps
	Sender     email.Sender
	Recipients []string
}

// ExecuteEmailBackup mails the export file to the configured recipients.
// PRE: at least one recipient is configured
// POST: the attachment has the same name and bytes a download would have;
// ErrExportEmpty when there is nothing to send
func ExecuteEmailBackup(ctx context.Context, deps EmailBackupDeps) (email.SendResult, error) {
	if len(deps.Recipients) == 0 {
		return email.SendResult{}, errors.New("no backup recipients configured")
	}
	export, err := ExecuteExportCollection(ctx, deps.Transfer)
	if err != nil {
		return email.SendResult{}, err
	}
	res, err := deps.Sender.Send(ctx, email.SendRequest{
		To:      deps.Recipients,
		Subject: "Respaldo Talentos Momentum: " + export.FileName,
		HTML: fmt.Sprintf("<p>Respaldo de %d registros adjunto como <code>%s</code>.</p>",
			export.Count, html.EscapeString(export.FileName)),
		Attachments: []email.Attachment{{
			Filename:    export.FileName,
			ContentType: "application/json",
			Content:     export.Data,
		}},
	})
	if err != nil {
		return email.SendResult{}, fmt.Errorf("send backup: %w", err)
	}
	return res, nil
}
