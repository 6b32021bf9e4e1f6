package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/userdesk/internal"
	"github.com/dmitrymomot/userdesk/internal/users"
	"github.com/dmitrymomot/userdesk/pkg/access"
	"github.com/dmitrymomot/userdesk/pkg/validate"
)

// Messages shown by the user pages.
const (
	MsgPasswordMismatch = "Passwords do not match"
	MsgInvalidPassword  = "Invalid password"
	MsgSelfPassword     = "You have been logged out. Please log in with your new password."
)

// User change operations reported to the Recorder.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpPassword = "password"
)

var editFields = []string{"username", "email", "name", "role"}

// Users handles the admin user pages and the self-service edit and
// password pages.
type Users struct {
	users *users.Repository
	config
}

// NewUsers returns the user handler.
func NewUsers(repo *users.Repository, opts ...Option) *Users {
	return &Users{users: repo, config: newConfig(opts)}
}

// Routes declares the /user routes and their rules. "/user/create" also
// matches the "/user/:id" rule, which admins pass.
func (h *Users) Routes(r internal.Router) {
	r.GET("/user", h.list)
	r.GET("/user/create", h.createForm)
	r.POST("/user/create", h.create)
	r.GET("/user/[id]", h.detail)
	r.POST("/user/[id]", h.update)
	r.GET("/user/[id]/edit", h.editForm)
	r.POST("/user/[id]/edit", h.update)
	r.POST("/user/[id]/delete", h.remove)
	r.GET("/user/[id]/change-password", h.passwordForm)
	r.POST("/user/[id]/change-password", h.changePassword)

	r.Protect("/user", access.All, access.AdminOnly)
	r.Protect("/user/create", access.All, access.AdminOnly)
	r.Protect("/user/:id", access.All, access.AdminOrSelf, access.AdminCanEditRoles)
	r.Protect("/user/:id/edit", access.All, access.AdminOrSelf, access.AdminCanEditRoles)
	r.Protect("/user/:id/delete", access.All, access.AdminOnly)
	r.Protect("/user/:id/change-password", access.All, access.AdminOrSelf)
}

func (h *Users) list(c internal.Context) error {
	res, err := h.users.List(c)
	if err != nil {
		return err
	}
	if !res.OK() {
		return internal.ErrInternal(res.Errors[users.AllKey])
	}
	return c.SendPage("user/index", map[string]any{"Users": res.Data})
}

func (h *Users) createForm(c internal.Context) error {
	return c.SendPage(pageUserCreate, map[string]any{"Form": users.Input{"role": string(users.RoleUser)}})
}

func (h *Users) create(c internal.Context) error {
	in := formInput(c, "username", "email", "password", "name", "role")

	res, err := h.users.Create(c, in)
	if err != nil {
		return err
	}
	if !res.OK() {
		delete(in, "password")
		return c.SendPage(pageUserCreate, map[string]any{"Form": in, "Errors": res.Errors})
	}
	h.stats.UserChanged(OpCreate)
	c.LogInfo("user created", slog.String("user_id", res.Data), slog.String("by", c.User().ID))

	if err := c.Flash(fmt.Sprintf("User \"%s\" created successfully.", in["username"]), internal.AlertSuccess); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/user/"+res.Data)
}

func (h *Users) detail(c internal.Context) error {
	u, err := h.selected(c)
	if err != nil {
		return err
	}
	return c.SendPage(pageUserDetail, map[string]any{"Selected": u})
}

func (h *Users) editForm(c internal.Context) error {
	u, err := h.selected(c)
	if err != nil {
		return err
	}
	return c.SendPage(pageUserEdit, map[string]any{"Selected": u, "Form": userForm(u)})
}

// update serves POST on both the detail and edit routes. Fields missing
// from the form keep their stored values.
func (h *Users) update(c internal.Context) error {
	u, err := h.selected(c)
	if err != nil {
		return err
	}

	in := formInput(c, editFields...)
	res, err := h.users.Update(c, u.ID, in)
	if err != nil {
		return err
	}
	if !res.OK() {
		if _, gone := res.Errors[users.AllKey]; gone {
			return notFound(res.Errors)
		}
		form := userForm(u)
		for k, v := range in {
			form[k] = v
		}
		return c.SendPage(pageUserEdit, map[string]any{"Selected": u, "Form": form, "Errors": res.Errors})
	}
	h.stats.UserChanged(OpUpdate)
	c.LogInfo("user updated", slog.String("user_id", u.ID), slog.String("by", c.User().ID))

	if err := c.Flash(fmt.Sprintf("User \"%s\" updated successfully.", res.Data.Username), internal.AlertSuccess); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/user/"+u.ID)
}

func (h *Users) remove(c internal.Context) error {
	res, err := h.users.Remove(c, c.Param("id"))
	if err != nil {
		return err
	}
	if !res.OK() {
		return notFound(res.Errors)
	}
	h.stats.UserChanged(OpDelete)
	c.LogInfo("user deleted", slog.String("user_id", res.Data.ID), slog.String("by", c.User().ID))

	if err := c.Flash(fmt.Sprintf("User \"%s\" deleted successfully.", res.Data.Username), internal.AlertSuccess); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/user")
}

func (h *Users) passwordForm(c internal.Context) error {
	u, err := h.selected(c)
	if err != nil {
		return err
	}
	return c.SendPage(pageChangePassword, map[string]any{"Selected": u})
}

// changePassword lets admins reset any password. Everyone else must
// confirm their current one. Changing your own password ends the session.
func (h *Users) changePassword(c internal.Context) error {
	u, err := h.selected(c)
	if err != nil {
		return err
	}
	actor := c.User()
	page := func(errs users.Errors) error {
		return c.SendPage(pageChangePassword, map[string]any{"Selected": u, "Errors": errs})
	}

	schema := users.ChangePasswordSchema
	if actor.IsAdmin() {
		schema = users.AdminChangePasswordSchema
	}
	form := validate.Data{
		"currentPassword": c.FormValue("currentPassword"),
		"newPassword":     c.FormValue("newPassword"),
		"confirmPassword": c.FormValue("confirmPassword"),
	}
	if res := validate.Validate(form, schema); !res.Valid {
		return page(res.Errors)
	}
	if form["newPassword"] != form["confirmPassword"] {
		return page(users.Errors{"confirmPassword": MsgPasswordMismatch})
	}

	if !actor.IsAdmin() {
		ok, err := h.users.VerifyPassword(c, u.ID, form["currentPassword"])
		if err != nil {
			return err
		}
		if !ok {
			return page(users.Errors{"currentPassword": MsgInvalidPassword})
		}
	}

	res, err := h.users.Patch(c, u.ID, users.Input{"password": form["newPassword"]})
	if err != nil {
		return err
	}
	if !res.OK() {
		if _, gone := res.Errors[users.AllKey]; gone {
			return notFound(res.Errors)
		}
		return page(users.Errors{"newPassword": res.Errors["password"]})
	}
	h.stats.UserChanged(OpPassword)
	c.LogInfo("password changed", slog.String("user_id", u.ID), slog.String("by", actor.ID))

	if actor.ID == u.ID {
		if err := c.Flash(MsgSelfPassword, internal.AlertSuccess); err != nil {
			return err
		}
		return c.Redirect(http.StatusFound, "/auth/logout")
	}
	if err := c.Flash(fmt.Sprintf("You've successfully changed \"%s\"'s password.", u.Username), internal.AlertSuccess); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, "/user/"+u.ID)
}

// selected loads the user named by the id parameter or fails with 404.
func (h *Users) selected(c internal.Context) (*users.User, error) {
	res, err := h.users.FindByID(c, c.Param("id"))
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, notFound(res.Errors)
	}
	return res.Data, nil
}
