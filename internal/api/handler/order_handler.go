package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/99minutos/order-tracking/internal/api/metrics"
	"github.com/99minutos/order-tracking/internal/api/response"
	"github.com/99minutos/order-tracking/internal/core/policy"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

// OrderHandler handles HTTP requests for order operations. Role-only checks
// run in the RBAC middleware; ownership is checked here.
type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

// Create handles POST /orders.
//
// @Summary      Place an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createOrderRequest  true  "Order items and shipping address"
// @Success      201   {object}  orderEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Failure      429   {object}  errorEnvelope
// @Router       /orders [post]
func (h *OrderHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	items := make([]ports.OrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ports.OrderItemInput{
			Name:        it.Name,
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	order, err := h.service.CreateOrder(c.Request().Context(), ports.CreateOrderInput{
		UserID:          actor.ID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
	})
	if err != nil {
		return err
	}
	metrics.OrdersCreatedTotal.Inc()

	return response.Created(c, "Order created successfully", order)
}

// MyOrders handles GET /orders/my-orders.
//
// @Summary      List the caller's orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ordersEnvelope
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Router       /orders/my-orders [get]
func (h *OrderHandler) MyOrders(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	orders, err := h.service.GetUserOrders(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}
	return response.Success(c, "Orders fetched successfully", nonNil(orders))
}

// List handles GET /orders.
//
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Page size (default 10, max 100)"
// @Success      200    {object}  pagedOrdersEnvelope
// @Failure      401    {object}  errorEnvelope
// @Failure      403    {object}  errorEnvelope
// @Router       /orders [get]
func (h *OrderHandler) List(c echo.Context) error {
	page, limit, p := pageParams(c)

	orders, total, err := h.service.GetAllOrders(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return response.Paginated(c, "Orders fetched successfully", nonNil(orders),
		response.NewPagination(total, page, limit))
}

// Get handles GET /orders/:id.
//
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  orderEnvelope
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	order, err := h.service.GetOrderByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if err := policy.Authorize(actor, policy.ViewOrder, order.UserID); err != nil {
		return err
	}
	return response.Success(c, "Order fetched successfully", order)
}

// UpdateStatus handles PATCH /orders/:id/status.
//
// @Summary      Change an order's status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Order ID"
// @Param        body  body      updateOrderStatusRequest  true  "New status"
// @Success      200   {object}  orderEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Router       /orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateOrderStatusRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	order, err := h.service.UpdateOrderStatus(c.Request().Context(), ports.UpdateOrderStatusInput{
		OrderID: c.Param("id"),
		Status:  req.Status,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	metrics.OrderStatusTransitionsTotal.WithLabelValues(string(order.Status)).Inc()

	return response.Success(c, "Order status updated successfully", order)
}

// Delete handles DELETE /orders/:id.
//
// @Summary      Delete an order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  envelope
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteOrder(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return response.Deleted(c, "Order deleted successfully")
}

// nonNil keeps empty lists rendering as [] instead of being dropped.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
