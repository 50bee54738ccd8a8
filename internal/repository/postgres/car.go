package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/repository"

	"github.com/shopspring/decimal"
)

type carRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) repository.CarRepository {
	return &carRepository{db: db}
}

const carColumns = `id, make, model, year, brand, color, description, image_url, price_per_day, currency, occupancy, rented_by, occupied_from, occupied_to, amount_charged, created_on, updated_on`

func (r *carRepository) Create(ctx context.Context, c *domain.Car) error {
	query := `INSERT INTO cars (make, model, year, brand, color, description, image_url, price_per_day, currency, occupancy, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if c.Occupancy == "" {
		c.Occupancy = domain.CarOccupancyAvailable
	}
	return r.db.QueryRowContext(ctx, query,
		c.Make, c.Model, c.Year, c.Brand, c.Color, c.Description, c.ImageURL,
		c.PricePerDay, c.Currency, c.Occupancy, time.Now(), time.Now(),
	).Scan(&c.ID)
}

func (r *carRepository) GetByID(ctx context.Context, id int64) (*domain.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`
	c := &domain.Car{}
	if err := scanCar(r.db.QueryRowContext(ctx, query, id), c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *carRepository) Update(ctx context.Context, c *domain.Car) error {
	query := `UPDATE cars SET make=$1, model=$2, year=$3, brand=$4, color=$5, description=$6, image_url=$7, price_per_day=$8, currency=$9, updated_on=$10 WHERE id=$11`
	_, err := r.db.ExecContext(ctx, query,
		c.Make, c.Model, c.Year, c.Brand, c.Color, c.Description, c.ImageURL,
		c.PricePerDay, c.Currency, time.Now(), c.ID)
	return err
}

func (r *carRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	return err
}

func (r *carRepository) List(ctx context.Context, onlyAvailable bool, page, pageSize int32) ([]domain.Car, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + carColumns + ` FROM cars`
	countQuery := `SELECT count(*) FROM cars`
	args := []interface{}{}
	if onlyAvailable {
		query += ` WHERE occupancy = $1`
		countQuery += ` WHERE occupancy = $1`
		args = append(args, domain.CarOccupancyAvailable)
	}

	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	if onlyAvailable {
		query += ` ORDER BY created_on DESC LIMIT $2 OFFSET $3`
	} else {
		query += ` ORDER BY created_on DESC LIMIT $1 OFFSET $2`
	}
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var cars []domain.Car
	for rows.Next() {
		var c domain.Car
		if err := scanCar(rows, &c); err != nil {
			return nil, 0, err
		}
		cars = append(cars, c)
	}
	return cars, count, rows.Err()
}

// TryOccupy is the inventory side of the conditional commit: the occupancy
// guard in the WHERE clause means at most one transaction can move a car to
// RENTED, no matter how many payment attempts race for it.
func (r *carRepository) TryOccupy(ctx context.Context, tx *sql.Tx, carID, occupant int64, from, to time.Time, amount decimal.Decimal) (bool, error) {
	query := `UPDATE cars SET occupancy = $1, rented_by = $2, occupied_from = $3, occupied_to = $4, amount_charged = $5, updated_on = $6
	          WHERE id = $7 AND occupancy != $8`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query,
			domain.CarOccupancyRented, occupant, from, to, amount, time.Now(), carID, domain.CarOccupancyRented)
	} else {
		res, err = r.db.ExecContext(ctx, query,
			domain.CarOccupancyRented, occupant, from, to, amount, time.Now(), carID, domain.CarOccupancyRented)
	}
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *carRepository) Release(ctx context.Context, carID int64) error {
	query := `UPDATE cars SET occupancy = $1, rented_by = NULL, occupied_from = NULL, occupied_to = NULL, amount_charged = NULL, updated_on = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, domain.CarOccupancyAvailable, time.Now(), carID)
	return err
}

func scanCar(row rowScanner, c *domain.Car) error {
	var rentedBy sql.NullInt64
	var from, to sql.NullTime
	err := row.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.Brand, &c.Color,
		&c.Description, &c.ImageURL, &c.PricePerDay, &c.Currency, &c.Occupancy,
		&rentedBy, &from, &to, &c.AmountCharged, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		return err
	}
	if rentedBy.Valid {
		c.RentedBy = &rentedBy.Int64
	}
	if from.Valid {
		c.OccupiedFrom = &from.Time
	}
	if to.Valid {
		c.OccupiedTo = &to.Time
	}
	return nil
}
