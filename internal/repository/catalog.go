package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rongwang/railway-server/internal/models"
)

type assignment struct {
	column string
	value  interface{}
}

// buildUpdate renders "UPDATE table SET a = $1, b = $2 WHERE k = $3 AND ..."
// with placeholders numbered in argument order
func buildUpdate(table string, sets, keys []assignment) (string, []interface{}) {
	args := make([]interface{}, 0, len(sets)+len(keys))

	clauses := make([]string, 0, len(sets))
	for _, s := range sets {
		args = append(args, s.value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", s.column, len(args)))
	}

	conds := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, k.value)
		conds = append(conds, fmt.Sprintf("%s = $%d", k.column, len(args)))
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		table, strings.Join(clauses, ", "), strings.Join(conds, " AND "))
	return query, args
}

func stationAssignments(p models.StationPatch) []assignment {
	var sets []assignment
	if p.Name != nil {
		sets = append(sets, assignment{"name", *p.Name})
	}
	if p.Location != nil {
		sets = append(sets, assignment{"location", *p.Location})
	}
	return sets
}

func stopAssignments(p models.StopPatch) []assignment {
	var sets []assignment
	if p.ArrivalTime != nil {
		sets = append(sets, assignment{"arrival_time", *p.ArrivalTime})
	}
	if p.DepartureTime != nil {
		sets = append(sets, assignment{"departure_time", *p.DepartureTime})
	}
	return sets
}

// Station repository methods
func (r *PostgresRepository) CreateStation(ctx context.Context, station *models.Station) error {
	query := `INSERT INTO stations (name, location) VALUES ($1, $2) RETURNING id`

	err := r.db.QueryRowxContext(ctx, query, station.Name, station.Location).Scan(&station.ID)
	return classify(err, "create station")
}

func (r *PostgresRepository) UpdateStation(ctx context.Context, id int64, patch models.StationPatch) error {
	sets := stationAssignments(patch)
	if len(sets) == 0 {
		return models.ErrNoFieldsProvided
	}

	query, args := buildUpdate("stations", sets, []assignment{{"id", id}})
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, "update station")
	}

	return requireAffected(res, fmt.Sprintf("station %d", id))
}

func (r *PostgresRepository) DeleteStation(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return classify(err, "delete station")
	}

	return requireAffected(res, fmt.Sprintf("station %d", id))
}

func (r *PostgresRepository) ListStations(ctx context.Context) ([]models.Station, error) {
	query := `SELECT id, name, location FROM stations ORDER BY id`

	stations := []models.Station{}
	if err := r.db.SelectContext(ctx, &stations, query); err != nil {
		return nil, err
	}

	return stations, nil
}

// Train repository methods

// CreateTrain inserts the train and all of its stops in one transaction.
// A bad station reference in any stop leaves nothing behind.
func (r *PostgresRepository) CreateTrain(ctx context.Context, train *models.Train, stops []models.TrainStop) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO trains (name, description) VALUES ($1, $2) RETURNING id`,
			train.Name, train.Description).Scan(&train.ID)
		if err != nil {
			return classify(err, "create train")
		}

		for i := range stops {
			stops[i].TrainID = train.ID
			err := tx.QueryRowxContext(ctx,
				`INSERT INTO train_stops (train_id, station_id, arrival_time, departure_time) VALUES ($1, $2, $3, $4) RETURNING id`,
				train.ID, stops[i].StationID, stops[i].ArrivalTime, stops[i].DepartureTime).Scan(&stops[i].ID)
			if err != nil {
				return classify(err, fmt.Sprintf("create stop %d", i+1))
			}
		}

		return nil
	})
}

func (r *PostgresRepository) UpdateTrainStop(ctx context.Context, trainID, stopID int64, patch models.StopPatch) error {
	sets := stopAssignments(patch)
	if len(sets) == 0 {
		return models.ErrNoFieldsProvided
	}

	query, args := buildUpdate("train_stops", sets, []assignment{{"id", stopID}, {"train_id", trainID}})
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, "update train stop")
	}

	return requireAffected(res, fmt.Sprintf("stop %d of train %d", stopID, trainID))
}

func (r *PostgresRepository) DeleteTrain(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM trains WHERE id = $1`, id)
	if err != nil {
		return classify(err, "delete train")
	}

	return requireAffected(res, fmt.Sprintf("train %d", id))
}

type scheduleRow struct {
	TrainID       int64  `db:"train_id"`
	TrainName     string `db:"train_name"`
	Description   string `db:"description"`
	StopID        int64  `db:"stop_id"`
	StationID     int64  `db:"station_id"`
	StationName   string `db:"station_name"`
	ArrivalTime   string `db:"arrival_time"`
	DepartureTime string `db:"departure_time"`
}

// ListTrainSchedules returns every train with at least one stop, ordered by
// train id, with stops ordered by arrival time
func (r *PostgresRepository) ListTrainSchedules(ctx context.Context) ([]models.TrainSchedule, error) {
	query := `
		SELECT t.id AS train_id, t.name AS train_name, t.description,
			ts.id AS stop_id, ts.station_id, s.name AS station_name,
			to_char(ts.arrival_time, 'HH24:MI:SS') AS arrival_time,
			to_char(ts.departure_time, 'HH24:MI:SS') AS departure_time
		FROM trains t
		JOIN train_stops ts ON t.id = ts.train_id
		JOIN stations s ON ts.station_id = s.id
		ORDER BY t.id, ts.arrival_time, ts.id
	`

	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	return groupSchedules(rows), nil
}

// groupSchedules folds joined rows into one schedule per train. Rows must
// arrive ordered by train id.
func groupSchedules(rows []scheduleRow) []models.TrainSchedule {
	schedules := []models.TrainSchedule{}
	for _, row := range rows {
		if n := len(schedules); n == 0 || schedules[n-1].ID != row.TrainID {
			schedules = append(schedules, models.TrainSchedule{
				ID:          row.TrainID,
				Name:        row.TrainName,
				Description: row.Description,
				Stops:       []models.ScheduleStop{},
			})
		}

		last := &schedules[len(schedules)-1]
		last.Stops = append(last.Stops, models.ScheduleStop{
			ID:            row.StopID,
			StationID:     row.StationID,
			StationName:   row.StationName,
			ArrivalTime:   row.ArrivalTime,
			DepartureTime: row.DepartureTime,
		})
	}
	return schedules
}
