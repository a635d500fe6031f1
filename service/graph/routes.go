package graph

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/linkora/linkora-server/cmd/utils"
	"gorm.io/gorm"
)

type Handler struct {
	engine *Engine
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{engine: NewEngine(db)}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/users/{id}/follow", utils.AuthMiddleware(h.FollowUser)).Methods("POST")
	router.HandleFunc("/users/{id}/unfollow", utils.AuthMiddleware(h.UnfollowUser)).Methods("POST")
	router.HandleFunc("/users/{id}/followers", h.GetFollowers).Methods("GET")
	router.HandleFunc("/users/{id}/following", h.GetFollowing).Methods("GET")
	router.HandleFunc("/users/{id}/stats", h.GetStats).Methods("GET")
}

func (h *Handler) FollowUser(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID, err := parseUserID(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.engine.Follow(actorID, targetID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "User followed",
	})
}

func (h *Handler) UnfollowUser(w http.ResponseWriter, r *http.Request) {
	actorID, err := utils.GetUserID(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	targetID, err := parseUserID(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.engine.Unfollow(actorID, targetID); err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "User unfollowed",
	})
}

func (h *Handler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	followers, err := h.engine.Followers(userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"followers": followers,
	})
}

func (h *Handler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	following, err := h.engine.Following(userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"following": following,
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(r)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	stats, err := h.engine.Stats(userID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, stats)
}

func parseUserID(r *http.Request) (uint, error) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(userID), nil
}
