package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aussiebroadwan/billybuddy/internal/clinic/domain"
	"github.com/aussiebroadwan/billybuddy/pkg/role"
)

type profilesRepo struct {
	db dbtx
}

const profileColumns = `p.id, p.role, p.full_name, p.email, p.cpf, p.phone, p.birth_date,
	p.must_change_password, p.temp_password, p.created_at, p.updated_at`

func scanProfile(row interface{ Scan(...any) error }) (domain.Profile, error) {
	var (
		p                    domain.Profile
		mustChange           int
		createdAt, updatedAt int64
	)
	err := row.Scan(&p.ID, &p.Role, &p.FullName, &p.Email, &p.CPF, &p.Phone, &p.BirthDate,
		&mustChange, &p.TempPassword, &createdAt, &updatedAt)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	p.MustChangePassword = mustChange != 0
	p.CreatedAt = fromUnix(createdAt)
	p.UpdatedAt = fromUnix(updatedAt)
	return p, nil
}

func (r *profilesRepo) GetProfile(ctx context.Context, id string) (domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles p WHERE p.id = ?`, id)
	return scanProfile(row)
}

func (r *profilesRepo) ListProfiles(ctx context.Context, rl role.Role, limit int) ([]domain.Profile, error) {
	var w where
	w.eq("p.role", rl.String())
	tail, args := w.sql("p.id DESC", limit)

	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles p`+tail, args...)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(rows *sql.Rows) (domain.Profile, error) { return scanProfile(rows) })
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	created := p.CreatedAt
	if created.IsZero() {
		created = now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, role, full_name, email, cpf, phone, birth_date,
			must_change_password, temp_password, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Role.String(), p.FullName, p.Email, p.CPF, p.Phone, p.BirthDate,
		boolInt(p.MustChangePassword), p.TempPassword, unix(created), unix(created),
	)
	return mapConstraint(err)
}

func (r *profilesRepo) UpdateProfile(ctx context.Context, id string, u domain.ProfileUpdate) error {
	sets := []string{"updated_at = ?"}
	args := []any{unix(now())}

	if u.FullName != nil {
		sets = append(sets, "full_name = ?")
		args = append(args, *u.FullName)
	}
	if u.CPF != nil {
		sets = append(sets, "cpf = ?")
		args = append(args, *u.CPF)
	}
	if u.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *u.Phone)
	}
	if u.MustChangePassword != nil {
		sets = append(sets, "must_change_password = ?")
		args = append(args, boolInt(*u.MustChangePassword))
	}
	if u.TempPassword != nil {
		sets = append(sets, "temp_password = ?")
		args = append(args, *u.TempPassword)
	}

	args = append(args, id)
	return requireAffected(r.db.ExecContext(ctx,
		`UPDATE profiles SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...))
}
