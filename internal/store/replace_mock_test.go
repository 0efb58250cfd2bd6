// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/models"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newMockStore(db *sql.DB) *sqliteLocalStore {
	return NewLocalStore(&DB{DB: db, logger: logger.Nop()}, logger.Nop()).(*sqliteLocalStore)
}

func expectStageEmpty(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	for _, name := range models.Collections {
		mock.ExpectExec("DELETE FROM " + string(name) + "_staging").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("INSERT INTO replace_journal").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
}

func TestReplaceDataset_StageBeginFails(t *testing.T) {
	db, mock := newTestDB(t)
	s := newMockStore(db)

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))
	// cleanup
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err := s.ReplaceDataset(testContext(), &models.Dataset{}, nil)
	require.ErrorIs(t, err, ErrPartialReplace)
	require.ErrorIs(t, err, ErrBeginningTransaction)

	var pre *PartialReplaceError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, PhaseStage, pre.Phase)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceDataset_StageWriteFailsRollsBack(t *testing.T) {
	db, mock := newTestDB(t)
	s := newMockStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM profiles_staging").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()
	// cleanup
	mock.ExpectBegin()
	for _, name := range models.Collections {
		mock.ExpectExec("DELETE FROM " + string(name) + "_staging").WillReturnResult(sqlmock.NewResult(0, 0))
	}
	mock.ExpectExec("DELETE FROM replace_journal").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.ReplaceDataset(testContext(), &models.Dataset{}, nil)

	var pre *PartialReplaceError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, PhaseStage, pre.Phase)
	assert.ErrorIs(t, err, ErrExecutingStatement)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceDataset_SwapFails(t *testing.T) {
	db, mock := newTestDB(t)
	s := newMockStore(db)

	expectStageEmpty(mock)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT state, privileged FROM replace_journal").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()
	// cleanup fails too, which is only logged
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err := s.ReplaceDataset(testContext(), &models.Dataset{}, nil)

	var pre *PartialReplaceError
	require.ErrorAs(t, err, &pre)
	assert.Equal(t, PhaseSwap, pre.Phase)
	assert.ErrorIs(t, err, ErrScanningRow)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecoverReplace_NoJournal(t *testing.T) {
	db, mock := newTestDB(t)
	s := newMockStore(db)

	mock.ExpectQuery("SELECT state, privileged FROM replace_journal").
		WillReturnRows(sqlmock.NewRows([]string{"state", "privileged"}))

	recovered, err := s.RecoverReplace(testContext())
	require.NoError(t, err)
	assert.False(t, recovered)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecoverReplace_CorruptJournal(t *testing.T) {
	db, mock := newTestDB(t)
	s := newMockStore(db)

	mock.ExpectQuery("SELECT state, privileged FROM replace_journal").
		WillReturnRows(sqlmock.NewRows([]string{"state", "privileged"}).AddRow(journalStaged, "{oops"))

	recovered, err := s.RecoverReplace(testContext())
	require.ErrorIs(t, err, ErrDecodingRecord)
	assert.False(t, recovered)
}
