package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/harborlight/outreach-backend/internal/apperrors"
	"github.com/harborlight/outreach-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	// Campaign CRUD
	CreateWithRecipients(c *model.Campaign, recipients []model.CampaignRecipient) error
	GetByID(id int) (*model.Campaign, error)
	ListCampaigns(offset, limit int, kind, status string) ([]*model.Campaign, int, error)
	Update(c *model.Campaign) error
	UpdateWithRecipients(c *model.Campaign, recipients []model.CampaignRecipient) error
	Delete(id int) error

	// Recipients & dispatch bookkeeping
	ListRecipients(campaignID int) ([]model.CampaignRecipient, error)
	ClaimForDispatch(id int) (bool, error)
	ReleaseClaim(id int) error
	MarkSent(id int, at time.Time) error
	MarkRecipientSent(id int, at time.Time) error
	MarkRecipientFailed(id int, reason string) error
	GetCampaignStats(campaignID int) (map[string]int, error)

	// Scheduler
	FindDueScheduled(now time.Time, limit int) ([]int, error)
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, name, kind, message, event_id, status, scheduled_for, sent_at, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*model.Campaign, error) {
	var c model.Campaign
	err := row.Scan(&c.ID, &c.Name, &c.Kind, &c.Message, &c.EventID, &c.Status,
		&c.ScheduledFor, &c.SentAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateWithRecipients inserts the campaign and its materialized recipient set
// in one transaction. No campaign may exist with a partially written set.
func (r *CampaignRepository) CreateWithRecipients(c *model.Campaign, recipients []model.CampaignRecipient) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.StatusDraft
	}

	err = tx.QueryRow(`
        INSERT INTO campaigns (name, kind, message, event_id, status, scheduled_for, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `, c.Name, c.Kind, c.Message, c.EventID, c.Status, c.ScheduledFor, c.CreatedAt).Scan(&c.ID)
	if err != nil {
		return err
	}

	if err := insertRecipients(tx, c.ID, recipients); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRecipients(tx *sql.Tx, campaignID int, recipients []model.CampaignRecipient) error {
	for i := range recipients {
		rec := &recipients[i]
		rec.CampaignID = campaignID
		rec.Status = model.RecipientPending
		err := tx.QueryRow(`
            INSERT INTO campaign_recipients (campaign_id, phone, name, attendee_id, status, created_at)
            VALUES ($1, $2, $3, $4, $5, NOW())
            RETURNING id, created_at
        `, campaignID, rec.Phone, rec.Name, rec.AttendeeID, rec.Status).Scan(&rec.ID, &rec.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *CampaignRepository) GetByID(id int) (*model.Campaign, error) {
	row := r.DB.QueryRow(`SELECT `+campaignColumns+` FROM campaigns WHERE id=$1`, id)
	c, err := scanCampaign(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, kind, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE 1=1`
	args := []any{}
	argPos := 1

	if kind != "" {
		query += fmt.Sprintf(" AND kind=$%d", argPos)
		args = append(args, kind)
		argPos++
	}
	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY id DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `SELECT COUNT(*) FROM campaigns WHERE 1=1`
	countArgs := []any{}
	argPos = 1
	if kind != "" {
		countQuery += fmt.Sprintf(" AND kind=$%d", argPos)
		countArgs = append(countArgs, kind)
		argPos++
	}
	if status != "" {
		countQuery += fmt.Sprintf(" AND status=$%d", argPos)
		countArgs = append(countArgs, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

func (r *CampaignRepository) Update(c *model.Campaign) error {
	_, err := r.DB.Exec(`
        UPDATE campaigns
        SET name=$1, message=$2, status=$3, scheduled_for=$4, updated_at=NOW()
        WHERE id=$5
    `, c.Name, c.Message, c.Status, c.ScheduledFor, c.ID)
	return err
}

// UpdateWithRecipients applies a field update and a full recipient replace in
// one transaction: both land or neither does.
func (r *CampaignRepository) UpdateWithRecipients(c *model.Campaign, recipients []model.CampaignRecipient) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
        UPDATE campaigns
        SET name=$1, message=$2, status=$3, scheduled_for=$4, updated_at=NOW()
        WHERE id=$5
    `, c.Name, c.Message, c.Status, c.ScheduledFor, c.ID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM campaign_recipients WHERE campaign_id=$1`, c.ID); err != nil {
		return err
	}
	if err := insertRecipients(tx, c.ID, recipients); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *CampaignRepository) Delete(id int) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM campaign_recipients WHERE campaign_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.Exec(`DELETE FROM campaigns WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NewCampaignNotFound(id)
	}

	return tx.Commit()
}

// ListRecipients returns recipients in persisted (dispatch) order.
func (r *CampaignRepository) ListRecipients(campaignID int) ([]model.CampaignRecipient, error) {
	rows, err := r.DB.Query(`
        SELECT id, campaign_id, phone, name, attendee_id, status, sent_at, COALESCE(last_error, ''), created_at
        FROM campaign_recipients
        WHERE campaign_id=$1
        ORDER BY id ASC
    `, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipients := []model.CampaignRecipient{}
	for rows.Next() {
		var rec model.CampaignRecipient
		err := rows.Scan(&rec.ID, &rec.CampaignID, &rec.Phone, &rec.Name, &rec.AttendeeID,
			&rec.Status, &rec.SentAt, &rec.LastError, &rec.CreatedAt)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, rec)
	}
	return recipients, rows.Err()
}

// ClaimForDispatch atomically moves a draft or scheduled campaign to
// "sending". Returns false when the campaign was already claimed or sent, so
// concurrent sends of the same campaign cannot both proceed.
func (r *CampaignRepository) ClaimForDispatch(id int) (bool, error) {
	res, err := r.DB.Exec(`
        UPDATE campaigns SET status=$1, updated_at=NOW()
        WHERE id=$2 AND status IN ($3, $4)
    `, model.StatusSending, id, model.StatusDraft, model.StatusScheduled)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ReleaseClaim returns a claimed campaign to its pre-claim status. Used when
// a precondition fails after the claim (empty recipient set).
func (r *CampaignRepository) ReleaseClaim(id int) error {
	_, err := r.DB.Exec(`
        UPDATE campaigns
        SET status = CASE WHEN scheduled_for IS NOT NULL THEN $1 ELSE $2 END,
            updated_at = NOW()
        WHERE id=$3 AND status=$4
    `, model.StatusScheduled, model.StatusDraft, id, model.StatusSending)
	return err
}

func (r *CampaignRepository) MarkSent(id int, at time.Time) error {
	_, err := r.DB.Exec(`
        UPDATE campaigns SET status=$1, sent_at=$2, updated_at=NOW() WHERE id=$3
    `, model.StatusSent, at, id)
	return err
}

func (r *CampaignRepository) MarkRecipientSent(id int, at time.Time) error {
	_, err := r.DB.Exec(`
        UPDATE campaign_recipients SET status=$1, sent_at=$2, last_error=NULL WHERE id=$3
    `, model.RecipientSent, at, id)
	return err
}

func (r *CampaignRepository) MarkRecipientFailed(id int, reason string) error {
	_, err := r.DB.Exec(`
        UPDATE campaign_recipients SET status=$1, last_error=$2 WHERE id=$3
    `, model.RecipientFailed, reason, id)
	return err
}

func (r *CampaignRepository) GetCampaignStats(campaignID int) (map[string]int, error) {
	rows, err := r.DB.Query(`
        SELECT status, COUNT(*) FROM campaign_recipients WHERE campaign_id=$1 GROUP BY status
    `, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{
		model.RecipientPending: 0,
		model.RecipientSent:    0,
		model.RecipientFailed:  0,
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// FindDueScheduled returns ids of scheduled campaigns whose send time has
// passed. The dispatch claim makes duplicate pickups harmless.
func (r *CampaignRepository) FindDueScheduled(now time.Time, limit int) ([]int, error) {
	rows, err := r.DB.Query(`
        SELECT id FROM campaigns
        WHERE status=$1 AND scheduled_for IS NOT NULL AND scheduled_for <= $2
        ORDER BY scheduled_for ASC
        LIMIT $3
    `, model.StatusScheduled, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
