package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sadopc/planner/internal/auth"
	"github.com/sadopc/planner/internal/backend"
)

// resource wires one table's operations. Nil operations are not routed.
type resource[T any] struct {
	list   func(userID string) ([]T, error)
	create func(userID string, in T) (*T, error)
	update func(userID, id string, f backend.Fields) (*T, error)
	remove func(userID, id string) error
}

func mount[T any](g *gin.RouterGroup, path string, res resource[T]) {
	if res.list != nil {
		g.GET(path, func(c *gin.Context) {
			rows, err := res.list(userID(c))
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, rows)
		})
	}
	if res.create != nil {
		g.POST(path, func(c *gin.Context) {
			var in T
			if err := c.ShouldBindJSON(&in); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			row, err := res.create(userID(c), in)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusCreated, row)
		})
	}
	if res.update != nil {
		g.PATCH(path+"/:id", func(c *gin.Context) {
			var patch backend.Fields
			if err := c.ShouldBindJSON(&patch); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if len(patch) == 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "empty update"})
				return
			}
			row, err := res.update(userID(c), c.Param("id"), patch)
			if err != nil {
				writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, row)
		})
	}
	if res.remove != nil {
		g.DELETE(path+"/:id", func(c *gin.Context) {
			if err := res.remove(userID(c), c.Param("id")); err != nil {
				writeError(c, err)
				return
			}
			c.Status(http.StatusNoContent)
		})
	}
}

func (s *Server) listCompletions(c *gin.Context) {
	rows, err := s.db.ListCompletions(userID(c), backend.CompletionFilter{
		HabitID:       c.Query("habit_id"),
		CompletedDate: c.Query("completed_date"),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) signUp(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := s.auth.SignUp(in.Email, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	s.log.Info("user signed up", "user_id", sess.User.ID)
	c.JSON(http.StatusOK, sess)
}

func (s *Server) token(c *gin.Context) {
	var in credentials
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := s.auth.SignIn(in.Email, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) logout(c *gin.Context) {
	if err := s.auth.SignOut(c.GetString(ctxToken)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) currentUser(c *gin.Context) {
	c.JSON(http.StatusOK, auth.User{ID: userID(c), Email: c.GetString("email")})
}
