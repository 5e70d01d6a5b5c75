package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"eventdesk/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateRegistration(reg models.Registration) error {
	_, err := d.Bun.NewInsert().Model(&reg).Exec(context.Background())
	return err
}

func (d *DB) GetRegistrationByID(id string) (*models.Registration, error) {
	var reg models.Registration
	err := d.Bun.NewSelect().
		Model(&reg).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (d *DB) UpdateRegistration(reg models.Registration) error {
	_, err := d.Bun.NewUpdate().
		Model(&reg).
		Column("name", "email", "role", "status").
		Where("id = ?", reg.ID).
		Exec(context.Background())
	return err
}

// UpdateRegistrationStatus is an unconditional overwrite. There is no
// version check: two operators racing on the same id are last write wins.
func (d *DB) UpdateRegistrationStatus(id string, status models.RegistrationStatus) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Registration)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteRegistration(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Registration)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) GetRegistrationsByEvent(eventID string) ([]models.Registration, error) {
	var regs []models.Registration
	err := d.Bun.NewSelect().
		Model(&regs).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return regs, nil
}

func (d *DB) GetEventByID(id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEvents() ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetExpiredEvents returns events whose end date has passed but whose
// status has not been moved to ended yet.
func (d *DB) GetExpiredEvents(now time.Time) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Where("end_date IS NOT NULL").
		Where("end_date < ?", now).
		Where("status != ?", models.EventEnded).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return events, nil
}

// AppendBadgeDownloadLog writes one audit row. The table is append-only:
// nothing in this codebase updates or deletes rows from it, and rows
// survive the deletion of the registration they were written for.
func (d *DB) AppendBadgeDownloadLog(entry models.BadgeDownloadLog) error {
	_, err := d.Bun.NewInsert().Model(&entry).Exec(context.Background())
	return err
}

func (d *DB) MarkEventEnded(id string) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Event)(nil)).
		Set("status = ?", models.EventEnded).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}
