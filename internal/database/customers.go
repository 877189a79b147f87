package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/domain"
	"github.com/saffetcelik/pansiyon-yonetim-sistemi-sub001/internal/models"
)

const customerColumns = `id, first_name, last_name, national_id, passport_no, phone, email, address, nationality, date_of_birth, notes, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*models.Customer, error) {
	var (
		c                    models.Customer
		nationalID, passport sql.NullString
		dob                  models.Date
	)
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &nationalID, &passport, &c.Phone, &c.Email,
		&c.Address, &c.Nationality, &dob, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.NationalID = nationalID.String
	c.PassportNo = passport.String
	c.DateOfBirth = dob
	return &c, nil
}

func (c conn) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	now := time.Now().UTC()
	result, err := c.q.ExecContext(ctx,
		`INSERT INTO customers (first_name, last_name, national_id, passport_no, phone, email, address, nationality, date_of_birth, notes, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.FirstName, customer.LastName,
		nullString(customer.NationalID), nullString(customer.PassportNo),
		customer.Phone, customer.Email, customer.Address, customer.Nationality,
		customer.DateOfBirth, customer.Notes, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create customer: %w", translate(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	customer.ID = id
	customer.CreatedAt = now
	customer.UpdatedAt = now
	return nil
}

func (c conn) UpdateCustomer(ctx context.Context, customer *models.Customer) error {
	now := time.Now().UTC()
	result, err := c.q.ExecContext(ctx,
		`UPDATE customers SET first_name = ?, last_name = ?, national_id = ?, passport_no = ?, phone = ?, email = ?,
            address = ?, nationality = ?, date_of_birth = ?, notes = ?, updated_at = ?
         WHERE id = ?`,
		customer.FirstName, customer.LastName,
		nullString(customer.NationalID), nullString(customer.PassportNo),
		customer.Phone, customer.Email, customer.Address, customer.Nationality,
		customer.DateOfBirth, customer.Notes, now, customer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update customer: %w", translate(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NotFound("customer", customer.ID)
	}
	customer.UpdatedAt = now
	return nil
}

func (c conn) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	row := c.q.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		return nil, notFoundOr(err, "customer", id)
	}
	return customer, nil
}

func (c conn) DeleteCustomer(ctx context.Context, id int64) error {
	result, err := c.q.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return &domain.Error{Code: domain.CodeCustomerInUse, Message: fmt.Sprintf("customer %d is referenced by reservations", id), Err: err}
		}
		return fmt.Errorf("failed to delete customer: %w", translate(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return domain.NotFound("customer", id)
	}
	return nil
}

// SearchCustomers does a case-insensitive partial match over names and identifying fields.
// An empty query lists everyone. The second return value is the total match count.
func (c conn) SearchCustomers(ctx context.Context, query string, limit, offset int) ([]models.Customer, int, error) {
	where := ``
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		pattern := "%" + escapeLike(strings.ToLower(q)) + "%"
		where = ` WHERE lower(first_name) LIKE ? ESCAPE '\'
            OR lower(last_name) LIKE ? ESCAPE '\'
            OR lower(first_name || ' ' || last_name) LIKE ? ESCAPE '\'
            OR lower(COALESCE(national_id, '')) LIKE ? ESCAPE '\'
            OR lower(COALESCE(passport_no, '')) LIKE ? ESCAPE '\'
            OR lower(phone) LIKE ? ESCAPE '\'
            OR lower(email) LIKE ? ESCAPE '\'`
		for i := 0; i < 7; i++ {
			args = append(args, pattern)
		}
	}

	var total int
	if err := c.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	listQuery := `SELECT ` + customerColumns + ` FROM customers` + where + ` ORDER BY last_name, first_name, id`
	listArgs := append([]any{}, args...)
	if limit > 0 {
		listQuery += ` LIMIT ? OFFSET ?`
		listArgs = append(listArgs, limit, offset)
	}

	rows, err := c.q.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		customer, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *customer)
	}
	return customers, total, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
