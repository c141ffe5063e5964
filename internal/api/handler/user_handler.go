package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/order-tracking/internal/api/response"
	"github.com/99minutos/order-tracking/internal/core/policy"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

// UserHandler handles HTTP requests for the user directory.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 10, max 100)"
// @Success      200    {object}  pagedUsersEnvelope
// @Failure      401    {object}  errorEnvelope
// @Failure      403    {object}  errorEnvelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, limit, p := pageParams(c)

	users, total, err := h.service.GetAllUsers(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return response.Paginated(c, "Users fetched successfully", nonNil(users),
		response.NewPagination(total, page, limit))
}

// ByRole handles GET /users/role?role=.
//
// @Summary      List users with a role
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        role  query     string  true  "CUSTOMER, DELIVERY_PARTNER or ADMIN"
// @Success      200   {object}  usersEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Router       /users/role [get]
func (h *UserHandler) ByRole(c echo.Context) error {
	users, err := h.service.GetUsersByRole(c.Request().Context(), c.QueryParam("role"))
	if err != nil {
		return err
	}
	return response.Success(c, "Users fetched successfully", nonNil(users))
}

// Search handles GET /users/search?q=.
//
// @Summary      Search users by name or email
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  true  "Substring of name or email"
// @Success      200  {object}  usersEnvelope
// @Failure      400  {object}  errorEnvelope
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Router       /users/search [get]
func (h *UserHandler) Search(c echo.Context) error {
	users, err := h.service.SearchUsers(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return response.Success(c, "Users found successfully", nonNil(users))
}

// Get handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userEnvelope
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	id, err := h.authorizeSelf(c, policy.ViewUser)
	if err != nil {
		return err
	}

	user, err := h.service.GetUserByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return response.Success(c, "User fetched successfully", user)
}

// Update handles PATCH /users/:id. Only an admin may change a role.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User ID"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  userEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Failure      409   {object}  errorEnvelope
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := h.authorizeSelf(c, policy.UpdateUser)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if req.Role != nil {
		actor, _ := ctxActor(c)
		if err := policy.Authorize(actor, policy.ChangeUserRole, id); err != nil {
			return err
		}
	}

	user, err := h.service.UpdateUser(c.Request().Context(), id, ports.UpdateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}
	return response.Success(c, "User updated successfully", user)
}

// Delete handles DELETE /users/:id. The user's orders are deleted with it.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  envelope
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := h.authorizeSelf(c, policy.DeleteUser)
	if err != nil {
		return err
	}

	if err := h.service.DeleteUser(c.Request().Context(), id); err != nil {
		return err
	}
	return response.Deleted(c, "User deleted successfully")
}

// authorizeSelf checks op against the user named in the path, who is the
// owner of their own record.
func (h *UserHandler) authorizeSelf(c echo.Context, op policy.Operation) (string, error) {
	actor, err := ctxActor(c)
	if err != nil {
		return "", err
	}
	id := c.Param("id")
	if err := policy.Authorize(actor, op, id); err != nil {
		return "", err
	}
	return id, nil
}
