package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"log/slog"

	"github.com/teamhackers/boardbooster/core/logger"
)

// PostgresStore persists the catalog hierarchy in Postgres. Every mutation
// runs in its own transaction scoped to the touched path.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore wraps an initialized connection pool.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type chapterRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func (s *PostgresStore) ListChapters(ctx context.Context, subject Subject) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		`SELECT name FROM chapters WHERE subject_code = $1 ORDER BY id`, string(subject))
	if err != nil {
		return nil, fmt.Errorf("list chapters: %w", err)
	}
	return names, nil
}

func (s *PostgresStore) ResolveChapter(ctx context.Context, subject Subject, token string) (Chapter, error) {
	row, err := s.resolve(ctx, s.db, subject, token)
	if err != nil {
		return Chapter{}, err
	}
	return Chapter{Subject: subject, Name: row.Name}, nil
}

// resolve applies the fallback ladder against all chapters of the subject.
// Chapter counts per subject are small, so matching in memory keeps the
// ladder identical to the in-memory store.
func (s *PostgresStore) resolve(ctx context.Context, q sqlx.QueryerContext, subject Subject, token string) (chapterRow, error) {
	var rows []chapterRow
	err := sqlx.SelectContext(ctx, q, &rows,
		`SELECT id, name FROM chapters WHERE subject_code = $1 ORDER BY id`, string(subject))
	if err != nil {
		return chapterRow{}, fmt.Errorf("resolve chapter: %w", err)
	}
	for _, r := range rows {
		if r.Name == token {
			return r, nil
		}
	}
	if decoded, exact := DecodeChapterToken(token); exact {
		for _, r := range rows {
			if r.Name == decoded {
				return r, nil
			}
		}
	}
	for _, r := range rows {
		if Slug(r.Name) == token {
			return r, nil
		}
	}
	norm := normalizeName(token)
	for _, r := range rows {
		if normalizeName(r.Name) == norm {
			return r, nil
		}
	}
	return chapterRow{}, ErrChapterNotFound
}

func (s *PostgresStore) CreateChapter(ctx context.Context, subject Subject, name string) error {
	start := time.Now()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkSubject(ctx, tx, subject); err != nil {
			return err
		}
		var clash int
		err := tx.GetContext(ctx, &clash,
			`SELECT count(*) FROM chapters WHERE subject_code = $1 AND (name = $2 OR slug = $3 OR norm = $4)`,
			string(subject), name, Slug(name), normalizeName(name))
		if err != nil {
			return fmt.Errorf("check chapter: %w", err)
		}
		if clash > 0 {
			return ErrChapterExists
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO chapters (subject_code, name, slug, norm) VALUES ($1, $2, $3, $4)`,
			string(subject), name, Slug(name), normalizeName(name))
		if err != nil {
			return fmt.Errorf("insert chapter: %w", err)
		}
		return nil
	})
	logger.CAT.Log(ctx, level(err), "chapter create",
		slog.String("event", "catalog.chapter.create"),
		slog.String("status", logger.Status(err)),
		slog.String("subject", string(subject)),
		slog.Duration("duration", logger.Took(start)),
	)
	return err
}

func (s *PostgresStore) GetContent(ctx context.Context, subject Subject, chapter string, t ContentType, lectureNo string) (FileRef, error) {
	row, err := s.resolve(ctx, s.db, subject, chapter)
	if err != nil {
		return FileRef{}, err
	}
	if !t.Multi() {
		lectureNo = ""
	}
	var ref FileRef
	err = s.db.GetContext(ctx, &ref,
		`SELECT file_id, file_path FROM contents
		 WHERE chapter_id = $1 AND content_type = $2 AND lecture_no = $3`,
		row.ID, string(t), lectureNo)
	if errors.Is(err, sql.ErrNoRows) {
		return FileRef{}, ErrContentAbsent
	}
	if err != nil {
		return FileRef{}, fmt.Errorf("get content: %w", err)
	}
	return ref, nil
}

func (s *PostgresStore) PutContent(ctx context.Context, subject Subject, chapter string, t ContentType, lectureNo string, ref FileRef) error {
	if t.Multi() && !ValidLectureNo(lectureNo) {
		return ErrBadLectureNo
	}
	if !t.Multi() {
		lectureNo = ""
	}
	start := time.Now()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.checkSubject(ctx, tx, subject); err != nil {
			return err
		}
		row, err := s.resolve(ctx, tx, subject, chapter)
		if errors.Is(err, ErrChapterNotFound) {
			res := tx.QueryRowxContext(ctx,
				`INSERT INTO chapters (subject_code, name, slug, norm) VALUES ($1, $2, $3, $4) RETURNING id, name`,
				string(subject), chapter, Slug(chapter), normalizeName(chapter))
			if err := res.StructScan(&row); err != nil {
				return fmt.Errorf("create chapter: %w", err)
			}
		} else if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO contents (chapter_id, content_type, lecture_no, file_id, file_path)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (chapter_id, content_type, lecture_no)
			 DO UPDATE SET file_id = EXCLUDED.file_id, file_path = EXCLUDED.file_path`,
			row.ID, string(t), lectureNo, ref.FileID, ref.Path)
		if err != nil {
			return fmt.Errorf("upsert content: %w", err)
		}
		return nil
	})
	logger.CAT.Log(ctx, level(err), "content put",
		slog.String("event", "catalog.content.put"),
		slog.String("status", logger.Status(err)),
		slog.String("subject", string(subject)),
		slog.String("content_type", string(t)),
		slog.String("lecture_no", lectureNo),
		slog.Duration("duration", logger.Took(start)),
	)
	return err
}

func (s *PostgresStore) UpdateFileID(ctx context.Context, subject Subject, chapter string, t ContentType, lectureNo, fileID string) error {
	if !t.Multi() {
		lectureNo = ""
	}
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		row, err := s.resolve(ctx, tx, subject, chapter)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE contents SET file_id = $1
			 WHERE chapter_id = $2 AND content_type = $3 AND lecture_no = $4`,
			fileID, row.ID, string(t), lectureNo)
		if err != nil {
			return fmt.Errorf("update file id: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrContentAbsent
		}
		return nil
	})
}

func (s *PostgresStore) DeleteChapter(ctx context.Context, subject Subject, chapter string) error {
	start := time.Now()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		row, err := s.resolve(ctx, tx, subject, chapter)
		if err != nil {
			return err
		}
		// contents cascade via FK
		_, err = tx.ExecContext(ctx, `DELETE FROM chapters WHERE id = $1`, row.ID)
		if err != nil {
			return fmt.Errorf("delete chapter: %w", err)
		}
		return nil
	})
	logger.CAT.Log(ctx, level(err), "chapter delete",
		slog.String("event", "catalog.chapter.delete"),
		slog.String("status", logger.Status(err)),
		slog.String("subject", string(subject)),
		slog.Duration("duration", logger.Took(start)),
	)
	return err
}

func (s *PostgresStore) DeleteContent(ctx context.Context, subject Subject, chapter string, t ContentType, lectureNo string) error {
	if !t.Multi() {
		lectureNo = ""
	}
	start := time.Now()
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		row, err := s.resolve(ctx, tx, subject, chapter)
		if err != nil {
			return err
		}
		var res sql.Result
		if t.Multi() && lectureNo == "" {
			res, err = tx.ExecContext(ctx,
				`DELETE FROM contents WHERE chapter_id = $1 AND content_type = $2`,
				row.ID, string(t))
		} else {
			res, err = tx.ExecContext(ctx,
				`DELETE FROM contents WHERE chapter_id = $1 AND content_type = $2 AND lecture_no = $3`,
				row.ID, string(t), lectureNo)
		}
		if err != nil {
			return fmt.Errorf("delete content: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrContentAbsent
		}
		// prune the chapter when nothing is left under it
		var left int
		if err := tx.GetContext(ctx, &left,
			`SELECT count(*) FROM contents WHERE chapter_id = $1`, row.ID); err != nil {
			return fmt.Errorf("count remaining: %w", err)
		}
		if left == 0 {
			if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE id = $1`, row.ID); err != nil {
				return fmt.Errorf("prune chapter: %w", err)
			}
		}
		return nil
	})
	logger.CAT.Log(ctx, level(err), "content delete",
		slog.String("event", "catalog.content.delete"),
		slog.String("status", logger.Status(err)),
		slog.String("subject", string(subject)),
		slog.String("content_type", string(t)),
		slog.String("lecture_no", lectureNo),
		slog.Duration("duration", logger.Took(start)),
	)
	return err
}

func (s *PostgresStore) ListLectureNumbers(ctx context.Context, subject Subject, chapter string) ([]string, error) {
	row, err := s.resolve(ctx, s.db, subject, chapter)
	if err != nil {
		return nil, err
	}
	var nos []string
	err = s.db.SelectContext(ctx, &nos,
		`SELECT lecture_no FROM contents WHERE chapter_id = $1 AND content_type = $2`,
		row.ID, string(TypeLecture))
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	SortLectureNos(nos)
	return nos, nil
}

func (s *PostgresStore) Summary(ctx context.Context, subject Subject, chapter string) (TypeCounts, error) {
	row, err := s.resolve(ctx, s.db, subject, chapter)
	if err != nil {
		return TypeCounts{}, err
	}
	var entries []struct {
		Type      string `db:"content_type"`
		LectureNo string `db:"lecture_no"`
	}
	err = s.db.SelectContext(ctx, &entries,
		`SELECT content_type, lecture_no FROM contents WHERE chapter_id = $1`, row.ID)
	if err != nil {
		return TypeCounts{}, fmt.Errorf("summary: %w", err)
	}
	var out TypeCounts
	for _, e := range entries {
		switch ContentType(e.Type) {
		case TypeLecture:
			out.Lectures = append(out.Lectures, e.LectureNo)
		case TypeNotes:
			out.HasNotes = true
		case TypeDPP:
			out.HasDPP = true
		}
	}
	SortLectureNos(out.Lectures)
	return out, nil
}

func (s *PostgresStore) checkSubject(ctx context.Context, tx *sqlx.Tx, subject Subject) error {
	var n int
	if err := tx.GetContext(ctx, &n,
		`SELECT count(*) FROM subjects WHERE code = $1`, string(subject)); err != nil {
		return fmt.Errorf("check subject: %w", err)
	}
	if n == 0 {
		return ErrUnknownSubject
	}
	return nil
}

func (s *PostgresStore) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func level(err error) slog.Level {
	if err == nil {
		return slog.LevelDebug
	}
	switch {
	case errors.Is(err, ErrChapterNotFound),
		errors.Is(err, ErrContentAbsent),
		errors.Is(err, ErrChapterExists),
		errors.Is(err, ErrBadLectureNo):
		return slog.LevelDebug
	}
	return slog.LevelError
}
