// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/models"
)

// journalStaged marks a replace whose staging collections are complete but
// not yet swapped into the main collections.
const journalStaged = "staged"

var errNoStagedReplace = errors.New("no staged replace in journal")

type journalEntry struct {
	state      string
	privileged []string
}

// ReplaceDataset runs the two-phase replace:
//  1. stage: clear staging, write ds into it and record the journal marker
//     in one transaction;
//  2. swap: copy staging over main, restore privileged settings, clear
//     staging and drop the marker in a second transaction.
//
// A crash between the phases leaves the marker behind, and RecoverReplace
// finishes the swap on the next start.
func (s *sqliteLocalStore) ReplaceDataset(ctx context.Context, ds *models.Dataset, privilegedKeys []string) error {
	log := logger.FromContext(ctx)

	incoming := withoutSettings(ds, privilegedKeys)

	if err := s.stage(ctx, incoming, privilegedKeys); err != nil {
		log.Err(err).Str("func", "sqliteLocalStore.ReplaceDataset").Str("phase", PhaseStage).Msg("replace failed")
		s.cleanupStaging(ctx)
		return &PartialReplaceError{Phase: PhaseStage, Err: err}
	}

	if err := s.swap(ctx); err != nil {
		log.Err(err).Str("func", "sqliteLocalStore.ReplaceDataset").Str("phase", PhaseSwap).Msg("replace failed")
		s.cleanupStaging(ctx)
		return &PartialReplaceError{Phase: PhaseSwap, Err: err}
	}

	log.Info().
		Str("func", "sqliteLocalStore.ReplaceDataset").
		Int("profiles", len(incoming.Profiles)).
		Int("chats", len(incoming.Chats)).
		Int("assets", len(incoming.Assets)).
		Msg("local dataset replaced")

	return nil
}

func (s *sqliteLocalStore) RecoverReplace(ctx context.Context) (bool, error) {
	log := logger.FromContext(ctx)

	entry, err := readJournal(ctx, s.DB.DB)
	if errors.Is(err, errNoStagedReplace) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	log.Warn().
		Str("func", "sqliteLocalStore.RecoverReplace").
		Str("state", entry.state).
		Msg("found interrupted replace, finishing swap")

	// staging is kept on failure so the next start can retry
	if err := s.swap(ctx); err != nil {
		return true, &PartialReplaceError{Phase: PhaseSwap, Err: err}
	}

	return true, nil
}

func (s *sqliteLocalStore) stage(ctx context.Context, ds *models.Dataset, privilegedKeys []string) error {
	if privilegedKeys == nil {
		privilegedKeys = []string{}
	}
	keys, err := json.Marshal(privilegedKeys)
	if err != nil {
		return fmt.Errorf("encode privileged keys: %w", err)
	}

	return s.WithTx(ctx, func(tx Tx) error {
		t := tx.(*sqliteTx)

		for _, name := range models.Collections {
			if err := t.staging(name).Clear(ctx); err != nil {
				return err
			}
		}

		if err := writeRecords(ctx, ds, tx.Staging); err != nil {
			return err
		}

		return putJournal(ctx, t.tx, journalStaged, keys)
	})
}

func (s *sqliteLocalStore) swap(ctx context.Context) error {
	return s.WithTx(ctx, func(tx Tx) error {
		t := tx.(*sqliteTx)

		entry, err := readJournal(ctx, t.tx)
		if err != nil {
			return err
		}

		settings := t.collection(models.CollectionSettings)
		preserved := make([]models.Record, 0, len(entry.privileged))
		for _, key := range entry.privileged {
			record, err := settings.Get(ctx, key)
			if errors.Is(err, ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			preserved = append(preserved, record)
		}

		for _, name := range models.Collections {
			main, staging := t.collection(name), t.staging(name)
			if err := main.Clear(ctx); err != nil {
				return err
			}
			if err := main.copyFrom(ctx, staging); err != nil {
				return err
			}
			if err := staging.Clear(ctx); err != nil {
				return err
			}
		}

		for _, record := range preserved {
			if err := settings.Put(ctx, record); err != nil {
				return err
			}
		}

		return deleteJournal(ctx, t.tx)
	})
}

// cleanupStaging is best effort: errors are only logged.
func (s *sqliteLocalStore) cleanupStaging(ctx context.Context) {
	err := s.WithTx(ctx, func(tx Tx) error {
		for _, name := range models.Collections {
			if err := tx.Staging(name).Clear(ctx); err != nil {
				return err
			}
		}
		return deleteJournal(ctx, tx.(*sqliteTx).tx)
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "sqliteLocalStore.cleanupStaging").
			Msg("failed to clear staging collections")
	}
}

func withoutSettings(ds *models.Dataset, keys []string) *models.Dataset {
	out := *ds
	out.Settings = make([]models.Setting, 0, len(ds.Settings))
	for _, setting := range ds.Settings {
		if !slices.Contains(keys, setting.Key) {
			out.Settings = append(out.Settings, setting)
		}
	}
	return &out
}

func readJournal(ctx context.Context, q queryer) (journalEntry, error) {
	query, args, err := buildSelectJournalQuery()
	if err != nil {
		return journalEntry{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var (
		entry      journalEntry
		privileged string
	)
	err = q.QueryRowContext(ctx, query, args...).Scan(&entry.state, &privileged)
	if errors.Is(err, sql.ErrNoRows) {
		return journalEntry{}, errNoStagedReplace
	}
	if err != nil {
		return journalEntry{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	if err := json.Unmarshal([]byte(privileged), &entry.privileged); err != nil {
		return journalEntry{}, fmt.Errorf("%w: replace journal: %w", ErrDecodingRecord, err)
	}

	return entry, nil
}

func putJournal(ctx context.Context, q queryer, state string, privileged []byte) error {
	query, args, err := buildPutJournalQuery(state, privileged, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func deleteJournal(ctx context.Context, q queryer) error {
	query, args, err := buildDeleteJournalQuery()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
