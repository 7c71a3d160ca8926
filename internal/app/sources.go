package app

import (
	"go.uber.org/zap"

	"github.com/nhle/case-classifier/internal/credential"
	"github.com/nhle/case-classifier/internal/mailsource"
	"github.com/nhle/case-classifier/internal/model"
	"github.com/nhle/case-classifier/internal/ui/importer"
)

// MailboxOpener returns the importer's opener for the configured IMAP
// account, loading the password from the keyring on each open. It returns
// nil when no mailbox is configured or no keyring is available.
func MailboxOpener(
	cfg model.MailboxConfig,
	vault *credential.Vault,
	logger *zap.Logger,
) importer.Opener {
	if !cfg.Configured() || vault == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func() (importer.Source, error) {
		password, err := vault.MailboxPassword()
		if err != nil {
			logger.Warn("mailbox password unavailable",
				zap.String("username", cfg.Username),
				zap.Error(err),
			)
			return nil, err
		}
		return mailsource.NewMailbox(cfg, password), nil
	}
}
