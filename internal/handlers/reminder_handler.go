package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ledgerkit/remindd/internal/models"
	"github.com/ledgerkit/remindd/internal/recurrence"
	"github.com/ledgerkit/remindd/internal/repository"
	"github.com/ledgerkit/remindd/internal/scheduler"
)

const dateLayout = "2006-01-02"

type ReminderHandler struct {
	reminderRepo *repository.ReminderRepository
	notifier     *scheduler.Notifier
}

func NewReminderHandler(reminderRepo *repository.ReminderRepository, notifier *scheduler.Notifier) *ReminderHandler {
	return &ReminderHandler{reminderRepo: reminderRepo, notifier: notifier}
}

func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req models.CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	increment := req.Increment
	if increment == 0 {
		increment = 1
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	reminder := &models.Reminder{
		ID:            uuid.New(),
		Description:   req.Description,
		Notes:         req.Notes,
		Kind:          req.Kind,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Increment:     increment,
		Enabled:       enabled,
		AutoEnter:     req.AutoEnter,
		AdvanceNotice: req.AdvanceNotice,
		WebhookURL:    req.WebhookURL,
		Metadata:      req.Metadata,
		Tags:          pq.StringArray(req.Tags),
	}

	if err := reminder.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reminderRepo.Create(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reminder"})
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandler) GetReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder ID"})
		return
	}

	reminder, err := h.reminderRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reminder"})
		return
	}
	if reminder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder ID"})
		return
	}

	reminder, err := h.reminderRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reminder"})
		return
	}
	if reminder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	var req models.UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Description != nil {
		reminder.Description = *req.Description
	}
	if req.Notes != nil {
		reminder.Notes = *req.Notes
	}
	if req.Kind != nil {
		reminder.Kind = *req.Kind
	}
	if req.StartDate != nil {
		reminder.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		reminder.EndDate = req.EndDate
	}
	if req.Increment != nil {
		reminder.Increment = *req.Increment
	}
	if req.Enabled != nil {
		reminder.Enabled = *req.Enabled
	}
	if req.AutoEnter != nil {
		reminder.AutoEnter = *req.AutoEnter
	}
	if req.AdvanceNotice != nil {
		reminder.AdvanceNotice = *req.AdvanceNotice
	}
	if req.WebhookURL != nil {
		reminder.WebhookURL = *req.WebhookURL
	}
	if req.Metadata != nil {
		reminder.Metadata = req.Metadata
	}
	if req.Tags != nil {
		reminder.Tags = pq.StringArray(req.Tags)
	}

	if err := reminder.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.reminderRepo.Update(c.Request.Context(), reminder); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reminder"})
		return
	}

	// Disabled reminders produce nothing; drop whatever is already queued.
	if !reminder.Enabled {
		if err := h.notifier.RemoveReminder(c.Request.Context(), reminder.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear queued notices"})
			return
		}
	}

	c.JSON(http.StatusOK, reminder)
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder ID"})
		return
	}

	if err := h.reminderRepo.Delete(c.Request.Context(), id); err != nil {
		if err == models.ErrReminderNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reminder"})
		return
	}

	if err := h.notifier.RemoveReminder(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear queued notices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}

func (h *ReminderHandler) ListReminders(c *gin.Context) {
	tags := c.QueryArray("tags")

	var reminders []*models.Reminder
	var err error
	if len(tags) > 0 {
		reminders, err = h.reminderRepo.ListByTags(c.Request.Context(), tags)
	} else {
		reminders, err = h.reminderRepo.List(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reminders"})
		return
	}

	c.JSON(http.StatusOK, reminders)
}

// ListOccurrences previews a reminder's upcoming occurrences, bounded by an
// optional `until` date or a `count` (default 10).
func (h *ReminderHandler) ListOccurrences(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder ID"})
		return
	}

	reminder, err := h.reminderRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reminder"})
		return
	}
	if reminder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	var dates []time.Time
	if until := c.Query("until"); until != "" {
		horizon, err := time.Parse(dateLayout, until)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid until date, expected YYYY-MM-DD"})
			return
		}
		dates, err = recurrence.OccurrencesUntil(reminder.Rule(), horizon)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	} else {
		count := 10
		if raw := c.Query("count"); raw != "" {
			count, err = strconv.Atoi(raw)
			if err != nil || count < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid count"})
				return
			}
		}
		dates, err = recurrence.NextOccurrences(reminder.Rule(), count)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	occurrences := make([]string, 0, len(dates))
	for _, d := range dates {
		occurrences = append(occurrences, d.Format(dateLayout))
	}

	c.JSON(http.StatusOK, gin.H{
		"reminder_id": reminder.ID,
		"occurrences": occurrences,
	})
}

// DueReminder pairs a reminder with the occurrence that makes it due.
type DueReminder struct {
	Reminder *models.Reminder `json:"reminder"`
	DueOn    string           `json:"due_on"`
}

// ListDue returns every enabled reminder that is due as of the given date
// (default today), honoring each reminder's advance notice.
func (h *ReminderHandler) ListDue(c *gin.Context) {
	asOf := recurrence.DateOf(time.Now().UTC())
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid as_of date, expected YYYY-MM-DD"})
			return
		}
		asOf = parsed
	}

	reminders, err := h.reminderRepo.ListEnabled(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reminders"})
		return
	}

	due := make([]DueReminder, 0)
	for _, reminder := range reminders {
		cutoff := asOf.AddDate(0, 0, reminder.AdvanceNotice)
		isDue, err := recurrence.IsDue(reminder.Rule(), cutoff)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !isDue {
			continue
		}
		next, _, err := recurrence.NextOccurrence(reminder.Rule())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		due = append(due, DueReminder{Reminder: reminder, DueOn: next.Format(dateLayout)})
	}

	c.JSON(http.StatusOK, due)
}

// FireReminder records that a consumer acted on an occurrence: it advances
// the reminder's last fired date and appends to the firing history. The
// fired date defaults to the next pending occurrence.
func (h *ReminderHandler) FireReminder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder ID"})
		return
	}

	reminder, err := h.reminderRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get reminder"})
		return
	}
	if reminder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	var req models.FireReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var firedOn time.Time
	if req.FiredOn != nil {
		firedOn = recurrence.DateOf(*req.FiredOn)
	} else {
		next, ok, err := recurrence.NextOccurrence(reminder.Rule())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.JSON(http.StatusConflict, gin.H{"error": "Reminder has no pending occurrence"})
			return
		}
		firedOn = next
	}

	firing := &models.Firing{
		ReminderID: reminder.ID,
		FiredOn:    firedOn,
		Status:     models.NoticeStatusDelivered,
		Detail:     "confirmed",
	}
	if err := h.reminderRepo.RecordFiring(c.Request.Context(), firing); err != nil {
		if err == models.ErrReminderNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record firing"})
		return
	}

	c.JSON(http.StatusOK, firing)
}

// ListFirings returns a reminder's firing history, newest first.
func (h *ReminderHandler) ListFirings(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder ID"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
	}

	firings, err := h.reminderRepo.ListFirings(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list firings"})
		return
	}

	c.JSON(http.StatusOK, firings)
}
