package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
	"github.com/linkora/linkora-server/cmd/models"
	"github.com/linkora/linkora-server/cmd/utils"
	"github.com/linkora/linkora-server/db"
	"github.com/linkora/linkora-server/service/graph"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var validate = validator.New()

type Handler struct {
	db    *gorm.DB
	graph *graph.Engine
}

func NewHandler(gdb *gorm.DB) *Handler {
	return &Handler{
		db:    gdb,
		graph: graph.NewEngine(gdb),
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/register", h.HandleRegister).Methods("POST")
	router.HandleFunc("/login", h.HandleLogin).Methods("POST")
	router.HandleFunc("/me", utils.AuthMiddleware(h.GetMe)).Methods("GET")
	router.HandleFunc("/users/search", h.SearchByUsername).Methods("GET")
	router.HandleFunc("/users/{id}", h.GetUser).Methods("GET")
	router.HandleFunc("/users/{id}", utils.AuthMiddleware(h.UpdateProfile)).Methods("PUT")

	fileServer := http.FileServer(http.Dir(utils.ImagePath))
	router.PathPrefix("/images/").Handler(http.StripPrefix("/images/", fileServer))
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Bio      string `json:"bio"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}

	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var existing models.User
	result := h.db.Where("username = ? OR email = ?", req.Username, req.Email).First(&existing)
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		if result.Error != nil {
			http.Error(w, "Database error", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Username or email is already in use", http.StatusConflict)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Error hashing password", http.StatusInternalServerError)
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Bio:          req.Bio,
	}

	if err := h.db.Create(&user).Error; err != nil {
		if db.IsDuplicateKey(err) {
			http.Error(w, "Username or email is already in use", http.StatusConflict)
			return
		}
		http.Error(w, "Error registering user", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user_id": user.ID,
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := generateJWT(user.ID)
	if err != nil {
		http.Error(w, "Error generating access token", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Login successful",
		"access_token": token,
		"user_id":      user.ID,
	})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	h.writeProfile(w, actorID)
}

// GetUser returns a user's profile with follow stats. Public read, no
// ownership check.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	h.writeProfile(w, uint(userID))
}

func (h *Handler) writeProfile(w http.ResponseWriter, userID uint) {
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.WriteError(w, models.ErrUserNotFound)
			return
		}
		utils.WriteError(w, err)
		return
	}

	stats, err := h.graph.Stats(userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":                   user.ID,
		"username":             user.Username,
		"bio":                  user.Bio,
		"profile_picture_path": user.ProfilePicturePath,
		"followers_count":      stats.FollowersCount,
		"following_count":      stats.FollowingCount,
	})
}

// UpdateProfile updates username, bio and optionally the profile picture,
// sent as multipart form data. Users may only update themselves.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	userID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if uint(userID) != actorID {
		utils.WriteError(w, models.ErrForbidden)
		return
	}

	if err := r.ParseMultipartForm(utils.MaxImageSize); err != nil {
		http.Error(w, "Error parsing form", http.StatusBadRequest)
		return
	}

	var user models.User
	if err := h.db.First(&user, actorID).Error; err != nil {
		utils.WriteError(w, models.ErrUserNotFound)
		return
	}

	if username := r.FormValue("username"); username != "" {
		user.Username = username
	}
	if bio := r.FormValue("bio"); bio != "" {
		user.Bio = bio
	}

	if file, header, err := r.FormFile("profile_picture"); err == nil {
		defer file.Close()

		imageURL, err := utils.SaveImage(file, header)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user.ProfilePicturePath = imageURL
	}

	if err := h.db.Save(&user).Error; err != nil {
		if db.IsDuplicateKey(err) {
			http.Error(w, "Username is already in use", http.StatusConflict)
			return
		}
		http.Error(w, "Error updating profile", http.StatusInternalServerError)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    user.Public(),
	})
}

func (h *Handler) SearchByUsername(w http.ResponseWriter, r *http.Request) {
	results, err := SearchUsers(h.db, r.URL.Query().Get("q"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": results,
	})
}

func generateJWT(userID uint) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   fmt.Sprint(userID),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("SECRET_KEY")))
}
