package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkingstonsqr/tile-notes/services"
)

type CalendarController struct {
	calendar *services.CalendarService
	now      func() time.Time
}

func NewCalendarController(calendar *services.CalendarService) *CalendarController {
	return &CalendarController{calendar: calendar, now: time.Now}
}

// GetMonth serves ?year=&month=&tz=, defaulting to the current month in UTC.
func (cc *CalendarController) GetMonth(c *gin.Context) {
	loc := time.UTC
	if tz := c.Query("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown time zone"})
			return
		}
		loc = l
	}

	now := cc.now().In(loc)
	year, month := now.Year(), int(now.Month())
	var err error
	if raw := c.Query("year"); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
	}
	if raw := c.Query("month"); raw != "" {
		if month, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must be a number"})
			return
		}
	}

	out, err := cc.calendar.Month(c.Request.Context(), ownerID(c), year, month, loc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
