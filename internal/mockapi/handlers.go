package mockapi

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/freightdesk/internal/common"
	"github.com/dmitrijs2005/freightdesk/internal/mockapi/auth"
)

const (
	minPasswordLength = 8
	invalidData       = "The given data was invalid."
)

var forbiddenMsg = gin.H{"message": "This action is unauthorized."}

func details[T any](items ...T) gin.H {
	if items == nil {
		items = []T{}
	}
	return gin.H{"details": items}
}

func validationError(c *gin.Context, errs map[string][]string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"message": invalidData, "errors": errs})
}

// canSee reports whether u may read the data of owner.
func canSee(u *User, owner int64) bool {
	return u.Role == RoleAdmin || u.ID == owner
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
		return
	}

	errs := map[string][]string{}
	if strings.TrimSpace(req.Email) == "" {
		errs["email"] = []string{"The email field is required."}
	}
	if req.Password == "" {
		errs["password"] = []string{"The password field is required."}
	}
	if len(errs) > 0 {
		validationError(c, errs)
		return
	}

	user, err := s.store.Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials."})
		return
	}

	token, err := auth.GenerateToken(strconv.FormatInt(user.ID, 10), s.secretKey, s.config.TokenTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not issue a token."})
		return
	}

	s.logger.Info(c.Request.Context(), "user logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (s *Server) logout(c *gin.Context) {
	if claims := authClaims(c); claims != nil {
		exp := time.Now().Add(s.config.TokenTTL)
		if claims.ExpiresAt != nil {
			exp = claims.ExpiresAt.Time
		}
		s.store.Revoke(claims.ID, exp)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out."})
}

func (s *Server) getUser(c *gin.Context) {
	me := authUser(c)
	id, err := strconv.ParseInt(c.Query("id"), 10, 64)
	if err != nil {
		id = me.ID
	}
	if !canSee(me, id) {
		c.JSON(http.StatusForbidden, forbiddenMsg)
		return
	}

	u, ok := s.store.User(id)
	if !ok {
		c.JSON(http.StatusOK, details[User]())
		return
	}
	c.JSON(http.StatusOK, details(*u))
}

func (s *Server) getShipments(c *gin.Context) {
	me := authUser(c)
	userID := me.ID
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			validationError(c, map[string][]string{"user_id": {"The user id must be a number."}})
			return
		}
		userID = id
	}
	if !canSee(me, userID) {
		c.JSON(http.StatusForbidden, forbiddenMsg)
		return
	}
	c.JSON(http.StatusOK, details(s.store.Shipments(userID)...))
}

func (s *Server) getShipment(c *gin.Context) {
	me := authUser(c)
	id, err := strconv.ParseInt(c.Query("shipment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusOK, details[Shipment]())
		return
	}

	sh, ok := s.store.Shipment(id)
	if !ok {
		c.JSON(http.StatusOK, details[Shipment]())
		return
	}
	if !canSee(me, sh.UserID) {
		c.JSON(http.StatusForbidden, forbiddenMsg)
		return
	}
	c.JSON(http.StatusOK, details(*sh))
}

// bindQuote decodes and validates a quote body. It writes the error
// response itself and returns ok=false when the request cannot be priced.
func bindQuote(c *gin.Context) (QuoteRequest, []parsedItem, bool) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
		return req, nil, false
	}
	if !deliverable(req.PickupAddress) || !deliverable(req.DeliveryAddress) {
		c.JSON(http.StatusBadRequest, gin.H{"message": NotDeliverableMessage})
		return req, nil, false
	}
	items, errs := parseQuote(req)
	if errs != nil {
		validationError(c, errs)
		return req, nil, false
	}
	return req, items, true
}

func (s *Server) getQuote(c *gin.Context) {
	req, items, ok := bindQuote(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, quote(items, req.ShippingOption))
}

func (s *Server) requestQuote(c *gin.Context) {
	me := authUser(c)
	req, items, ok := bindQuote(c)
	if !ok {
		return
	}

	carrier, found := carrierByName(req.TransportName)
	if !found {
		validationError(c, map[string][]string{"transport_name": {"The selected transport name is invalid."}})
		return
	}

	var price float64
	offered := false
	for _, q := range quote(items, req.ShippingOption) {
		if q.TransportName == carrier.name {
			price, offered = q.Price, true
		}
	}
	if !offered {
		validationError(c, map[string][]string{"transport_name": {carrier.name + " cannot carry this shipment."}})
		return
	}

	var detailItems []Item
	for _, it := range items {
		for n := 0; n < it.quantity; n++ {
			detailItems = append(detailItems, Item{Weight: it.weight, Length: it.length, Width: it.width, Height: it.height})
		}
	}

	sh := s.store.AddShipment(Shipment{
		UserID:        me.ID,
		CarrierID:     carrier.id,
		CarrierName:   carrier.name,
		TransportName: carrier.name,
		Status:        "requested",
		Price:         price,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		Details:       detailItems,
	})

	s.logger.Info(c.Request.Context(), "quote requested", "user_id", me.ID, "shipment_id", sh.ID, "carrier", carrier.name)
	c.JSON(http.StatusCreated, gin.H{"message": "Quote requested.", "details": []Shipment{sh}})
}

func (s *Server) sendResetCode(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	if _, err := mail.ParseAddress(email); err != nil {
		validationError(c, map[string][]string{"email": {"The email must be a valid email address."}})
		return
	}

	code, err := s.store.IssueResetCode(email)
	if errors.Is(err, common.ErrorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "We can't find a user with that email address."})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not send a reset code."})
		return
	}

	// There is no mail delivery, the log is where the code ends up.
	s.logger.Info(c.Request.Context(), "password reset code issued", "email", email, "code", code)
	c.JSON(http.StatusOK, gin.H{"message": "We have emailed your password reset code."})
}

func (s *Server) verifyResetCode(c *gin.Context) {
	email := strings.TrimSpace(c.Query("email"))
	code := c.Query("token")
	password := c.Query("password")

	errs := map[string][]string{}
	if email == "" {
		errs["email"] = []string{"The email field is required."}
	}
	if code == "" {
		errs["token"] = []string{"The token field is required."}
	}
	if len(password) < minPasswordLength {
		errs["password"] = []string{"The password must be at least " + strconv.Itoa(minPasswordLength) + " characters."}
	}
	if len(errs) > 0 {
		validationError(c, errs)
		return
	}

	if err := s.store.ResetPassword(email, code, password); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			validationError(c, map[string][]string{"token": {"This password reset token is invalid."}})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not reset the password."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Your password has been reset."})
}

type checkEmailRequest struct {
	Email   string  `json:"email"`
	Exclude userRef `json:"exclude_user_id"`
}

type checkPhoneRequest struct {
	Phone   string  `json:"phone_number"`
	Exclude userRef `json:"exclude_user_id"`
}

func (s *Server) checkEmail(c *gin.Context) {
	var req checkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		validationError(c, map[string][]string{"email": {"The email field is required."}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": s.store.EmailTaken(req.Email, int64(req.Exclude))})
}

func (s *Server) checkPhoneNumber(c *gin.Context) {
	var req checkPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Phone) == "" {
		validationError(c, map[string][]string{"phone_number": {"The phone number field is required."}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": s.store.PhoneTaken(req.Phone, int64(req.Exclude))})
}

func (s *Server) support(c *gin.Context) {
	var req SupportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
		return
	}

	errs := map[string][]string{}
	if strings.TrimSpace(req.Category) == "" {
		errs["category"] = []string{"The category field is required."}
	}
	if strings.TrimSpace(req.Message) == "" {
		errs["message"] = []string{"The message field is required."}
	}
	if len(errs) > 0 {
		validationError(c, errs)
		return
	}

	req.UserID = authUser(c).ID
	s.store.AddSupportRequest(req)
	c.JSON(http.StatusCreated, gin.H{"message": "Support request received."})
}

func (s *Server) updateUser(c *gin.Context) {
	me := authUser(c)
	var req ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request."})
		return
	}
	if req.ID == 0 {
		req.ID = userRef(me.ID)
	}
	if !canSee(me, int64(req.ID)) {
		c.JSON(http.StatusForbidden, forbiddenMsg)
		return
	}

	errs := map[string][]string{}
	if strings.TrimSpace(req.FirstName) == "" {
		errs["first_name"] = []string{"The first name field is required."}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		errs["email"] = []string{"The email must be a valid email address."}
	}
	if len(errs) > 0 {
		validationError(c, errs)
		return
	}

	u, err := s.store.UpdateUser(req)
	switch {
	case errors.Is(err, errEmailInUse):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "This email already in use."})
		return
	case errors.Is(err, errPhoneInUse):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "The phone number has already been taken."})
		return
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
		return
	case err != nil:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not update the user."})
		return
	}

	s.logger.Info(c.Request.Context(), "user updated", "user_id", u.ID, "by", me.ID)
	c.JSON(http.StatusOK, gin.H{"message": "User updated.", "details": []User{*u}})
}

func (s *Server) getUsers(c *gin.Context) {
	if authUser(c).Role != RoleAdmin {
		c.JSON(http.StatusForbidden, forbiddenMsg)
		return
	}
	c.JSON(http.StatusOK, details(s.store.Users()...))
}

type deleteUserRequest struct {
	ID userRef `json:"id"`
}

func (s *Server) deleteUser(c *gin.Context) {
	me := authUser(c)
	if me.Role != RoleAdmin {
		c.JSON(http.StatusForbidden, forbiddenMsg)
		return
	}

	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		validationError(c, map[string][]string{"id": {"The id field is required."}})
		return
	}
	if int64(req.ID) == me.ID {
		validationError(c, map[string][]string{"id": {"You cannot delete your own account."}})
		return
	}

	if err := s.store.DeleteUser(int64(req.ID)); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found."})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not delete the user."})
		return
	}

	s.logger.Info(c.Request.Context(), "user deleted", "user_id", int64(req.ID), "by", me.ID)
	c.JSON(http.StatusOK, gin.H{"message": "User deleted."})
}
