package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implementasi TaskRepository di PostgreSQL (bisa pool atau tx).
type TaskRepo struct {
	q Querier
}

// NewTaskRepository membangun adaptor tugas tahap. Terima pool atau tx (Querier).
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

// Create menyimpan tugas tahap baru. Unique (batch_id, stage) menjaga satu
// tugas per tahap per batch.
func (r *TaskRepo) Create(t *entity.StageTask) error {
	query := `
		INSERT INTO stage_tasks
			(id, batch_id, stage, assigned_to_id, status, pieces_received, pieces_completed, reject_pieces, notes, assigned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.BatchID, string(t.Stage), t.AssignedToID, string(t.Status),
		t.PiecesReceived, t.PiecesCompleted, t.RejectPieces, t.Notes, t.AssignedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tugas %s batch %s sudah ada: %w", t.Stage, t.BatchID, err)
		}
		return fmt.Errorf("insert stage task: %w", err)
	}
	return nil
}

const taskColumns = `
	id, batch_id, stage, assigned_to_id, status, pieces_received,
	pieces_completed, reject_pieces, notes, assigned_at, started_at,
	completed_at, verified_at, COALESCE(verified_by_id, '')`

func scanTask(row pgx.Row) (*entity.StageTask, error) {
	var t entity.StageTask
	var stage, status string
	err := row.Scan(
		&t.ID, &t.BatchID, &stage, &t.AssignedToID, &status, &t.PiecesReceived,
		&t.PiecesCompleted, &t.RejectPieces, &t.Notes, &t.AssignedAt, &t.StartedAt,
		&t.CompletedAt, &t.VerifiedAt, &t.VerifiedByID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.Stage = production.Stage(stage)
	t.Status = production.TaskStatus(status)
	return &t, nil
}

// GetByBatchAndStage memuat tugas satu tahap dari satu batch.
func (r *TaskRepo) GetByBatchAndStage(batchID string, stage production.Stage) (*entity.StageTask, error) {
	t, err := scanTask(r.q.QueryRow(context.Background(),
		`SELECT `+taskColumns+` FROM stage_tasks WHERE batch_id = $1 AND stage = $2`,
		batchID, string(stage)))
	if err != nil {
		return nil, fmt.Errorf("get stage task: %w", err)
	}
	return t, nil
}

// GetByBatchAndStageForUpdate seperti GetByBatchAndStage plus kunci baris.
func (r *TaskRepo) GetByBatchAndStageForUpdate(batchID string, stage production.Stage) (*entity.StageTask, error) {
	t, err := scanTask(r.q.QueryRow(context.Background(),
		`SELECT `+taskColumns+` FROM stage_tasks WHERE batch_id = $1 AND stage = $2 FOR UPDATE`,
		batchID, string(stage)))
	if err != nil {
		return nil, fmt.Errorf("get stage task for update: %w", err)
	}
	return t, nil
}

// Update menyimpan seluruh field mutable tugas.
func (r *TaskRepo) Update(t *entity.StageTask) error {
	verifiedBy := (*string)(nil)
	if t.VerifiedByID != "" {
		verifiedBy = &t.VerifiedByID
	}
	query := `
		UPDATE stage_tasks
		SET assigned_to_id = $2, status = $3, pieces_received = $4, pieces_completed = $5,
		    reject_pieces = $6, notes = $7, started_at = $8, completed_at = $9,
		    verified_at = $10, verified_by_id = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.AssignedToID, string(t.Status), t.PiecesReceived, t.PiecesCompleted,
		t.RejectPieces, t.Notes, t.StartedAt, t.CompletedAt, t.VerifiedAt, verifiedBy,
	)
	if err != nil {
		return fmt.Errorf("update stage task: %w", err)
	}
	return nil
}

// ListByStatus memuat tugas lintas batch pada satu status, urut penyelesaian.
func (r *TaskRepo) ListByStatus(status production.TaskStatus) ([]*entity.StageTask, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+taskColumns+` FROM stage_tasks WHERE status = $1 ORDER BY completed_at NULLS LAST, assigned_at`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("list stage tasks by status: %w", err)
	}
	defer rows.Close()
	var result []*entity.StageTask
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage task: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// UpsertCuttingResult membuat/memperbarui hasil potong per (batch, size, color)
// dan selalu mereset flag confirmed.
func (r *TaskRepo) UpsertCuttingResult(res *entity.CuttingResult) error {
	query := `
		INSERT INTO cutting_results (id, batch_id, product_size, color, actual_pieces, confirmed, updated_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
		ON CONFLICT (batch_id, product_size, color)
		DO UPDATE SET actual_pieces = EXCLUDED.actual_pieces, confirmed = false, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		res.ID, res.BatchID, res.ProductSize, res.Color, res.ActualPieces, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert cutting result: %w", err)
	}
	return nil
}

// GetCuttingResults memuat seluruh hasil potong satu batch.
func (r *TaskRepo) GetCuttingResults(batchID string) ([]*entity.CuttingResult, error) {
	query := `
		SELECT id, batch_id, product_size, color, actual_pieces, confirmed, updated_at
		FROM cutting_results
		WHERE batch_id = $1
		ORDER BY product_size, color`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list cutting results: %w", err)
	}
	defer rows.Close()
	var result []*entity.CuttingResult
	for rows.Next() {
		var res entity.CuttingResult
		if err := rows.Scan(&res.ID, &res.BatchID, &res.ProductSize, &res.Color,
			&res.ActualPieces, &res.Confirmed, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan cutting result: %w", err)
		}
		result = append(result, &res)
	}
	return result, rows.Err()
}

// ConfirmCuttingResults menandai seluruh hasil potong batch terkonfirmasi.
func (r *TaskRepo) ConfirmCuttingResults(batchID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE cutting_results SET confirmed = true WHERE batch_id = $1`, batchID)
	if err != nil {
		return fmt.Errorf("confirm cutting results: %w", err)
	}
	return nil
}
