package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
)

type veterinariansRepo struct {
	db dbtx
}

const vetSelect = `SELECT v.id, v.crmv, v.uf, v.clinic_name, v.status, v.contract_valid_until,
	v.created_at, v.updated_at, ` + profileColumns + `
	FROM veterinarians v JOIN profiles p ON p.id = v.id`

func scanVeterinarian(row interface{ Scan(...any) error }) (domain.Veterinarian, error) {
	var (
		v                  domain.Veterinarian
		p                  domain.Profile
		vCreated, vUpdated int64
		mustChange         int
		pCreated, pUpdated int64
	)
	err := row.Scan(&v.ID, &v.CRMV, &v.UF, &v.ClinicName, &v.Status, &v.ContractValidUntil,
		&vCreated, &vUpdated,
		&p.ID, &p.Role, &p.FullName, &p.Email, &p.CPF, &p.Phone, &p.BirthDate,
		&mustChange, &p.TempPassword, &pCreated, &pUpdated)
	if err != nil {
		return domain.Veterinarian{}, mapNotFound(err)
	}
	v.CreatedAt = fromUnix(vCreated)
	v.UpdatedAt = fromUnix(vUpdated)
	p.MustChangePassword = mustChange != 0
	p.CreatedAt = fromUnix(pCreated)
	p.UpdatedAt = fromUnix(pUpdated)
	v.Profile = &p
	return v, nil
}

func (r *veterinariansRepo) GetVeterinarian(ctx context.Context, id string) (domain.Veterinarian, error) {
	return scanVeterinarian(r.db.QueryRowContext(ctx, vetSelect+` WHERE v.id = ?`, id))
}

func (r *veterinariansRepo) ListVeterinarians(ctx context.Context, status domain.VetStatus, limit int) ([]domain.Veterinarian, error) {
	var w where
	w.eq("v.status", string(status))
	tail, args := w.sql("v.id DESC", limit)

	rows, err := r.db.QueryContext(ctx, vetSelect+tail, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(rows *sql.Rows) (domain.Veterinarian, error) { return scanVeterinarian(rows) })
}

func (r *veterinariansRepo) CreateVeterinarian(ctx context.Context, v domain.Veterinarian) error {
	created := v.CreatedAt
	if created.IsZero() {
		created = now()
	}
	status := v.Status
	if status == "" {
		status = domain.VetPending
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO veterinarians (id, crmv, uf, clinic_name, status, contract_valid_until, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.CRMV, v.UF, v.ClinicName, string(status), v.ContractValidUntil, unix(created), unix(created),
	)
	return mapConstraint(err)
}

func (r *veterinariansRepo) UpdateVeterinarian(ctx context.Context, id string, u domain.VeterinarianUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{unix(now())}

	if u.CRMV != nil {
		sets = append(sets, "crmv = ?")
		args = append(args, *u.CRMV)
	}
	if u.UF != nil {
		sets = append(sets, "uf = ?")
		args = append(args, *u.UF)
	}
	if u.ClinicName != nil {
		sets = append(sets, "clinic_name = ?")
		args = append(args, *u.ClinicName)
	}
	if u.ContractValidUntil != nil {
		sets = append(sets, "contract_valid_until = ?")
		args = append(args, *u.ContractValidUntil)
	}

	args = append(args, id)
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE veterinarians SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...))
}

func (r *veterinariansRepo) UpdateVeterinarianStatus(ctx context.Context, id string, status domain.VetStatus) error {
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE veterinarians SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), unix(now()), id,
	))
}

func (r *veterinariansRepo) CountByStatus(ctx context.Context) (map[domain.VetStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM veterinarians GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[domain.VetStatus]int{
		domain.VetActive:   0,
		domain.VetInactive: 0,
		domain.VetPending:  0,
	}
	for rows.Next() {
		var (
			status domain.VetStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
