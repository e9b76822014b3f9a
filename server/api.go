package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wfunc/triviaserver/models"
	"github.com/wfunc/triviaserver/persistence"
	"github.com/wfunc/triviaserver/trivia"
)

const defaultRankingLimit = 100

// registerRoutes mounts the read-only query surface. Nothing here mutates
// room or game state.
func (s *GameServer) registerRoutes(engine *gin.Engine) {
	engine.Use(cors.Default())

	api := engine.Group("/api")
	{
		api.GET("/rooms", s.listRooms)
		api.GET("/quiz/categories", s.getCategories)
		api.GET("/quiz/questions", s.getQuestions)
		api.GET("/users/:id", s.getUser)
		api.POST("/users", s.createUser)
		api.GET("/rankings/overall", s.getOverallRankings)
		api.GET("/rankings/category/:id", s.getCategoryRankings)
		api.GET("/rankings/weekly", s.getWeeklyRankings)
	}
}

func (s *GameServer) listRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    s.roomRegistry.List(),
	})
}

func (s *GameServer) getCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    trivia.Categories,
	})
}

func (s *GameServer) getQuestions(c *gin.Context) {
	amount := 10
	if raw := c.Query("amount"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < trivia.MinAmount || parsed > trivia.MaxAmount {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "amount must be 1-50",
			})
			return
		}
		amount = parsed
	}

	difficulty := c.Query("difficulty")
	if !trivia.ValidDifficulty(difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "difficulty must be easy, medium or hard",
		})
		return
	}

	category := 0
	if raw := c.Query("category"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "category must be numeric",
			})
			return
		}
		category = parsed
	}

	questions, err := s.provider.FetchQuestions(c.Request.Context(), amount, category, difficulty)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, trivia.ErrInvalidParameter) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    questions,
		"count":   len(questions),
	})
}

func (s *GameServer) getUser(c *gin.Context) {
	profile, stats, err := s.userService.GetUserWithStats(c.Param("id"))
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"profile": profile, "stats": stats},
	})
}

type createUserRequest struct {
	UserID   string `json:"userId"`
	Nickname string `json:"nickname"`
}

func (s *GameServer) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "malformed body"})
		return
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" || len(nickname) > maxNicknameLength {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "nickname must be 1-24 characters"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userId is required"})
		return
	}

	if err := s.userService.EnsureUser(req.UserID, nickname); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	profile, err := s.userService.GetUser(req.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": profile})
}

func (s *GameServer) getOverallRankings(c *gin.Context) {
	s.respondRankings(c, models.OverallBucket)
}

func (s *GameServer) getCategoryRankings(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "category must be numeric"})
		return
	}
	s.respondRankings(c, models.CategoryBucket(id))
}

func (s *GameServer) getWeeklyRankings(c *gin.Context) {
	bucket := models.WeekBucket(time.Now())
	entries, err := s.resultService.TopRankings(bucket, defaultRankingLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries, "week": bucket})
}

func (s *GameServer) respondRankings(c *gin.Context, bucket string) {
	entries, err := s.resultService.TopRankings(bucket, defaultRankingLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": entries})
}
