package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/storefront/pkg/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// renderError maps service error kinds onto HTTP statuses. Anything
// unrecognized is a storage or internal failure and comes back as 500.
func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func itemIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
		return 0, false
	}
	return uint(id), true
}

// Catalog

func (s *Server) listItems(c *gin.Context) {
	items, err := s.catalog.List(c.Request.Context(), c.Query("sort"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (s *Server) getItem(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}
	item, err := s.catalog.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"item":      item,
		"in_stock":  item.InStock(),
		"image_url": item.ImageURL(),
	})
}

// Account

func (s *Server) signup(c *gin.Context) {
	var in service.SignupInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := s.accounts.Signup(c.Request.Context(), in)
	if err != nil {
		s.renderError(c, err)
		return
	}

	session, err := s.accounts.Login(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": session.Token})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := s.accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": session.Token})
}

func (s *Server) logout(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		if cookie, err := c.Cookie("session"); err == nil {
			token = cookie
		}
	}
	if token != "" {
		if err := s.accounts.Logout(c.Request.Context(), token); err != nil {
			s.renderError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getProfile(c *gin.Context) {
	profile, err := s.accounts.ProfileFor(c.Request.Context(), currentUser(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

func (s *Server) profileActivity(c *gin.Context) {
	logs, err := s.accounts.RecentActivity(c.Request.Context(), currentUser(c), 20)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": logs})
}

// Cart

func (s *Server) viewCart(c *gin.Context) {
	view, err := s.cart.View(c.Request.Context(), currentUser(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) addCartItem(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}
	if err := s.cart.Add(c.Request.Context(), currentUser(c), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) removeCartItem(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}
	if err := s.cart.RemoveOne(c.Request.Context(), currentUser(c), id); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Orders

func (s *Server) checkout(c *gin.Context) {
	order, err := s.orders.Checkout(c.Request.Context(), currentUser(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.orders.OrdersFor(c.Request.Context(), currentUser(c))
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": len(orders)})
}

// Reviews

func (s *Server) itemReviews(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}
	reviews, err := s.reviews.ReviewsFor(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": reviews, "total": len(reviews)})
}

func (s *Server) submitReview(c *gin.Context) {
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Rating decimal.Decimal `json:"rating"`
		Text   string          `json:"text"`
	}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.reviews.Submit(c.Request.Context(), currentUser(c), id, req.Rating, req.Text); err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}
