package store

import (
	"context"
	"database/sql"
	stderrors "errors"

	"gestion-notas/internal/model"
	"gestion-notas/pkg/errors"

	"github.com/go-sql-driver/mysql"
)

const mysqlDupEntry = 1062

type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) List(ctx context.Context) ([]model.Student, error) {
	query := `SELECT id, nombre, parcial1, parcial2, parcial3, promedio, created_at, updated_at
			  FROM estudiantes ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var st model.Student
		err := rows.Scan(&st.ID, &st.Nombre, &st.Parcial1, &st.Parcial2,
			&st.Parcial3, &st.Promedio, &st.CreatedAt, &st.UpdatedAt)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}

	return students, rows.Err()
}

func (s *MySQLStore) Get(ctx context.Context, id string) (*model.Student, error) {
	query := `SELECT id, nombre, parcial1, parcial2, parcial3, promedio, created_at, updated_at
			  FROM estudiantes WHERE id = ?`

	var st model.Student
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&st.ID, &st.Nombre, &st.Parcial1, &st.Parcial2,
		&st.Parcial3, &st.Promedio, &st.CreatedAt, &st.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.ErrEstudianteNotFound
	}
	if err != nil {
		return nil, err
	}

	return &st, nil
}

func (s *MySQLStore) Create(ctx context.Context, st *model.Student) error {
	query := `INSERT INTO estudiantes (id, nombre, parcial1, parcial2, parcial3, promedio, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, st.ID, st.Nombre, st.Parcial1,
		st.Parcial2, st.Parcial3, st.Promedio, st.CreatedAt, st.UpdatedAt)
	if isDupEntry(err) {
		return errors.ErrDuplicateID
	}
	return err
}

func (s *MySQLStore) Update(ctx context.Context, st *model.Student) error {
	query := `UPDATE estudiantes SET nombre = ?, parcial1 = ?, parcial2 = ?, parcial3 = ?,
			  promedio = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, st.Nombre, st.Parcial1, st.Parcial2,
		st.Parcial3, st.Promedio, st.UpdatedAt, st.ID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.ErrEstudianteNotFound
	}
	return nil
}

func (s *MySQLStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM estudiantes WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.ErrEstudianteNotFound
	}
	return nil
}

func (s *MySQLStore) BulkInsert(ctx context.Context, students []model.Student) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO estudiantes (id, nombre, parcial1, parcial2, parcial3, promedio, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	for i := range students {
		st := &students[i]
		_, err := tx.ExecContext(ctx, query, st.ID, st.Nombre, st.Parcial1,
			st.Parcial2, st.Parcial3, st.Promedio, st.CreatedAt, st.UpdatedAt)
		if isDupEntry(err) {
			return errors.ErrDuplicateID
		}
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *MySQLStore) CreateImport(ctx context.Context, imp *model.Import) error {
	query := `INSERT INTO imports (s3_path, status, total_rows) VALUES (?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query, imp.S3Path, imp.Status, imp.TotalRows)
	if err != nil {
		return err
	}

	imp.ID, err = result.LastInsertId()
	return err
}

func (s *MySQLStore) GetImport(ctx context.Context, id int64) (*model.Import, error) {
	query := `SELECT id, s3_path, status, total_rows, error_message, created_at, updated_at
			  FROM imports WHERE id = ?`

	var imp model.Import
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&imp.ID, &imp.S3Path, &imp.Status, &imp.TotalRows,
		&imp.ErrorMessage, &imp.CreatedAt, &imp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.ErrImportNotFound
	}
	if err != nil {
		return nil, err
	}

	return &imp, nil
}

func (s *MySQLStore) UpdateImportStatus(ctx context.Context, id int64, status model.ImportStatus, totalRows int, errorMessage *string) error {
	query := `UPDATE imports SET status = ?, total_rows = ?, error_message = ?, updated_at = NOW() WHERE id = ?`

	_, err := s.db.ExecContext(ctx, query, status, totalRows, errorMessage, id)
	return err
}

func isDupEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return stderrors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry
}
