// Package worker implements the out-of-process sync deployment mode: the
// server publishes state-changed notifications, this worker reads the local
// document and mirrors it to the remote store.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"carfund/internal/amqp"
	"carfund/internal/auth"
	"carfund/internal/cloud"
	"carfund/internal/core"
	"carfund/internal/state"
)

// SyncWorker pushes local state documents to the remote mirror.
type SyncWorker struct {
	store  *state.Store
	remote cloud.RemoteStore
}

func NewSyncWorker(store *state.Store, remote cloud.RemoteStore) *SyncWorker {
	return &SyncWorker{store: store, remote: remote}
}

// HandleStateSync processes a single state-changed notification: read the
// current local document and upsert it remotely under the account identity
// from the message. Stale notifications are harmless since the freshest
// document is read at handling time.
func (w *SyncWorker) HandleStateSync(ctx context.Context, msg *amqp.StateSyncMessage) error {
	slog.InfoContext(ctx, "Processing state sync message",
		"account_id", msg.AccountID,
		"last_modified", msg.LastModified)

	doc, err := w.store.Load(ctx, state.LocalAccount)
	if err != nil {
		return fmt.Errorf("load local state: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err := w.remote.Upsert(ctx, msg.AccountID, data); err != nil {
		return fmt.Errorf("push state to remote: %w", err)
	}

	slog.InfoContext(ctx, "Synced state to remote",
		"account_id", msg.AccountID,
		"last_modified", doc.Meta.LastModified)
	return nil
}

// Publisher is the subset of the AMQP client the notifier needs.
type Publisher interface {
	PublishStateSync(ctx context.Context, accountID string, lastModified int64) error
}

// NewSaveNotifier returns a save listener that publishes a state-changed
// notification for the currently signed-in account. While signed out, saves
// stay local. Publish failures are logged; the save itself already succeeded.
func NewSaveNotifier(pub Publisher, accounts auth.Provider) state.SaveListener {
	return func(accountID string, doc core.StateDocument) {
		ctx := context.Background()
		account, err := accounts.Current(ctx)
		if err != nil || account == nil {
			return
		}
		if err := pub.PublishStateSync(ctx, account.ID, doc.Meta.LastModified); err != nil {
			slog.Warn("Failed to publish state sync message",
				"account_id", account.ID, "error", err)
		}
	}
}
