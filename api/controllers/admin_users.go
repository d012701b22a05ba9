package controllers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/fruitstand-backend/api/middleware"
	"github.com/angelmondragon/fruitstand-backend/api/responses"
	"github.com/angelmondragon/fruitstand-backend/api/validators"
	"github.com/angelmondragon/fruitstand-backend/internal/users"
	pkgerrors "github.com/angelmondragon/fruitstand-backend/pkg/errors"
	"github.com/angelmondragon/fruitstand-backend/pkg/logger"
	"github.com/angelmondragon/fruitstand-backend/pkg/pagination"
)

// AdminUserList bundles a page of users with the next cursor.
type AdminUserList struct {
	Users      []users.UserDTO `json:"users"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}

// AdminListUsers serves the registered accounts for back-office review.
func AdminListUsers(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cursor, err := pagination.ParseCursor(strings.TrimSpace(r.URL.Query().Get("cursor")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor"))
			return
		}

		rows, err := repo.List(r.Context(), pagination.LimitWithBuffer(limit), cursor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users"))
			return
		}

		normalized := pagination.NormalizeLimit(limit)
		result := AdminUserList{}
		if len(rows) > normalized {
			rows = rows[:normalized]
			last := rows[len(rows)-1]
			encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
			result.NextCursor = &encoded
		}
		result.Users = users.FromModels(rows)

		responses.WriteSuccess(w, result)
	}
}

// AdminGetUser serves one account by ID.
func AdminGetUser(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := repo.FindByID(r.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user"))
			return
		}

		responses.WriteSuccess(w, users.FromModel(user))
	}
}

// AdminDeleteUser removes an account. Admins cannot delete themselves.
func AdminDeleteUser(repo *users.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := pathUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if userID == middleware.UserIDFromContext(r.Context()) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account"))
			return
		}

		if err := repo.Delete(r.Context(), userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "user not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
