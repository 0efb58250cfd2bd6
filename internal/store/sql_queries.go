package store

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/marine14f/geminipwa-sub000/models"
)

const (
	stagingSuffix = "_staging"
	journalTable  = "replace_journal"
	journalRowID  = 1
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func mainTable(name models.CollectionName) (string, error) {
	if !name.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	return string(name), nil
}

func stagingTable(name models.CollectionName) (string, error) {
	table, err := mainTable(name)
	if err != nil {
		return "", err
	}
	return table + stagingSuffix, nil
}

func buildSelectAllQuery(table string) (string, []any, error) {
	return psql.Select("id", "doc").From(table).OrderBy("id").ToSql()
}

func buildSelectOneQuery(table, id string) (string, []any, error) {
	return psql.Select("id", "doc").From(table).Where(sq.Eq{"id": id}).ToSql()
}

func buildUpsertQuery(table string, record models.Record) (string, []any, error) {
	return psql.Insert(table).
		Columns("id", "doc").
		Values(record.ID, record.Data).
		Suffix("ON CONFLICT(id) DO UPDATE SET doc = excluded.doc").
		ToSql()
}

func buildDeleteQuery(table, id string) (string, []any, error) {
	return psql.Delete(table).Where(sq.Eq{"id": id}).ToSql()
}

func buildClearQuery(table string) (string, []any, error) {
	return psql.Delete(table).ToSql()
}

// buildCopyQuery copies every row of src into dst.
func buildCopyQuery(dst, src string) (string, []any, error) {
	return psql.Insert(dst).
		Columns("id", "doc").
		Select(psql.Select("id", "doc").From(src)).
		ToSql()
}

func buildSelectJournalQuery() (string, []any, error) {
	return psql.Select("state", "privileged").From(journalTable).Where(sq.Eq{"id": journalRowID}).ToSql()
}

func buildPutJournalQuery(state string, privileged []byte, createdAt string) (string, []any, error) {
	return psql.Insert(journalTable).
		Columns("id", "state", "privileged", "created_at").
		Values(journalRowID, state, string(privileged), createdAt).
		Suffix("ON CONFLICT(id) DO UPDATE SET state = excluded.state, privileged = excluded.privileged, created_at = excluded.created_at").
		ToSql()
}

func buildDeleteJournalQuery() (string, []any, error) {
	return psql.Delete(journalTable).Where(sq.Eq{"id": journalRowID}).ToSql()
}
