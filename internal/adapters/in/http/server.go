package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"

	"geoshop/internal/core/application/usecases/commands"
	"geoshop/internal/core/application/usecases/queries"
	"geoshop/internal/core/domain/model/kernel"
	"geoshop/internal/core/ports"
	"geoshop/internal/pkg/errs"
)

// Identity headers set by the gateway in front of this service.
const (
	HeaderUserID     = "X-User-ID"
	HeaderProviderID = "X-Provider-ID"
)

// Server exposes the order workflow over HTTP. It coordinates between HTTP
// handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler  commands.CreateOrderCommandHandler
	updateOrderHandler  commands.UpdateOrderCommandHandler
	confirmOrderHandler commands.ConfirmOrderCommandHandler
	deleteOrderHandler  commands.DeleteOrderCommandHandler
	deleteItemHandler   commands.DeleteOrderItemCommandHandler
	fetchExtractHandler commands.FetchExtractOrdersCommandHandler
	uploadResultHandler commands.UploadExtractResultCommandHandler
	validateItemHandler commands.ValidateOrderItemCommandHandler
	downloadHandler     commands.DownloadResultCommandHandler

	// Query handlers
	getClientOrdersHandler queries.GetClientOrdersQueryHandler
	getOrderHandler        queries.GetOrderQueryHandler
	getLastDraftHandler    queries.GetLastDraftQueryHandler
	getPublicOrderHandler  queries.GetPublicOrderQueryHandler

	fileStore ports.FileStore
}

// NewServer creates an HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	updateOrderHandler commands.UpdateOrderCommandHandler,
	confirmOrderHandler commands.ConfirmOrderCommandHandler,
	deleteOrderHandler commands.DeleteOrderCommandHandler,
	deleteItemHandler commands.DeleteOrderItemCommandHandler,
	fetchExtractHandler commands.FetchExtractOrdersCommandHandler,
	uploadResultHandler commands.UploadExtractResultCommandHandler,
	validateItemHandler commands.ValidateOrderItemCommandHandler,
	downloadHandler commands.DownloadResultCommandHandler,
	getClientOrdersHandler queries.GetClientOrdersQueryHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getLastDraftHandler queries.GetLastDraftQueryHandler,
	getPublicOrderHandler queries.GetPublicOrderQueryHandler,
	fileStore ports.FileStore,
) *Server {
	return &Server{
		createOrderHandler:     createOrderHandler,
		updateOrderHandler:     updateOrderHandler,
		confirmOrderHandler:    confirmOrderHandler,
		deleteOrderHandler:     deleteOrderHandler,
		deleteItemHandler:      deleteItemHandler,
		fetchExtractHandler:    fetchExtractHandler,
		uploadResultHandler:    uploadResultHandler,
		validateItemHandler:    validateItemHandler,
		downloadHandler:        downloadHandler,
		getClientOrdersHandler: getClientOrdersHandler,
		getOrderHandler:        getOrderHandler,
		getLastDraftHandler:    getLastDraftHandler,
		getPublicOrderHandler:  getPublicOrderHandler,
		fileStore:              fileStore,
	}
}

// RegisterRoutes binds every endpoint onto the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetOrders)
	api.GET("/orders/last-draft", s.GetLastDraft)
	api.GET("/orders/:orderID", s.GetOrder)
	api.PUT("/orders/:orderID", s.UpdateOrder)
	api.DELETE("/orders/:orderID", s.DeleteOrder)
	api.POST("/orders/:orderID/confirm", s.ConfirmOrder)
	api.DELETE("/orders/:orderID/items/:itemID", s.DeleteOrderItem)

	api.POST("/extract/orders", s.FetchExtractOrders)
	api.POST("/extract/items/:itemID/result", s.UploadExtractResult)

	api.PATCH("/validations/:token", s.ValidateOrderItem)
	api.GET("/public/orders/:token", s.GetPublicOrder)
	api.GET("/download/:token", s.DownloadResult)
}

// CreateOrder handles POST /api/v1/orders - opens a new draft order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	clientID, err := identityFromHeader(ctx, HeaderUserID)
	if err != nil {
		return respondError(ctx, err)
	}

	var request OrderRequest
	if err = ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, err)
	}
	items, err := request.itemSpecs()
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	invoiceContactID, err := request.invoiceContactID()
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(
		orderID,
		clientID,
		request.Title,
		request.Description,
		request.PolygonWKT,
		request.SRID,
		items,
		invoiceContactID,
		request.InvoiceReference,
	)
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: orderID.String()})
}

// GetOrders handles GET /api/v1/orders - lists the client's orders.
func (s *Server) GetOrders(ctx echo.Context) error {
	clientID, err := identityFromHeader(ctx, HeaderUserID)
	if err != nil {
		return respondError(ctx, err)
	}

	query, err := queries.NewGetClientOrdersQuery(clientID)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	digests, err := s.getClientOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]OrderDigest, 0, len(digests))
	for _, digest := range digests {
		response = append(response, orderDigestFromResponse(digest))
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/:orderID - returns one order in full.
func (s *Server) GetOrder(ctx echo.Context) error {
	clientID, err := identityFromHeader(ctx, HeaderUserID)
	if err != nil {
		return respondError(ctx, err)
	}
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, clientID)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	detail, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderDetailFromResponse(detail))
}

// GetLastDraft handles GET /api/v1/orders/last-draft - returns the client's
// newest draft so the front end can resume it. 204 when there is none.
func (s *Server) GetLastDraft(ctx echo.Context) error {
	clientID, err := identityFromHeader(ctx, HeaderUserID)
	if err != nil {
		return respondError(ctx, err)
	}

	query, err := queries.NewGetLastDraftQuery(clientID)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	detail, err := s.getLastDraftHandler.Handle(ctx.Request().Context(), query)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderDetailFromResponse(detail))
}

// GetPublicOrder handles GET /api/v1/public/orders/:token - shows the order
// behind a download token, without client identity.
func (s *Server) GetPublicOrder(ctx echo.Context) error {
	token, err := kernel.UUIDFromString(ctx.Param("token"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	query, err := queries.NewGetPublicOrderQuery(token)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	detail, err := s.getPublicOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderDetailFromResponse(detail))
}

// UpdateOrder handles PUT /api/v1/orders/:orderID - reworks a draft order.
func (s *Server) UpdateOrder(ctx echo.Context) error {
	clientID, err := identityFromHeader(ctx, HeaderUserID)
	if err != nil {
		return respondError(ctx, err)
	}
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	var request OrderRequest
	if err = ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, err)
	}
	items, err := request.itemSpecs()
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	invoiceContactID, err := request.invoiceContactID()
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	cmd, err := commands.NewUpdateOrderCommand(
		orderID,
		clientID,
		request.Title,
		request.Description,
		request.PolygonWKT,
		request.SRID,
		items,
		invoiceContactID,
		request.InvoiceReference,
	)
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	if err = s.updateOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ConfirmOrder handles POST /api/v1/orders/:orderID/confirm - prices the
// order, checks product ownership and moves it out of the draft state.
func (s *Server) ConfirmOrder(ctx echo.Context) error {
	clientID, err := identityFromHeader(ctx, HeaderUserID)
	if err != nil {
		return respondError(ctx, err)
	}
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	cmd, err := commands.NewConfirmOrderCommand(orderID, clientID)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	if err = s.confirmOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// DeleteOrder handles DELETE /api/v1/orders/:orderID - drops a draft or
// rejects a quoted order.
func (s *Server) DeleteOrder(ctx echo.Context) error {
	clientID, err := identityFromHeader(ctx, HeaderUserID)
	if err != nil {
		return respondError(ctx, err)
	}
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	cmd, err := commands.NewDeleteOrderCommand(orderID, clientID)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	if err = s.deleteOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// DeleteOrderItem handles DELETE /api/v1/orders/:orderID/items/:itemID -
// removes one line from a draft order.
func (s *Server) DeleteOrderItem(ctx echo.Context) error {
	clientID, err := identityFromHeader(ctx, HeaderUserID)
	if err != nil {
		return respondError(ctx, err)
	}
	orderID, err := kernel.UUIDFromString(ctx.Param("orderID"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	itemID, err := kernel.UUIDFromString(ctx.Param("itemID"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	cmd, err := commands.NewDeleteOrderItemCommand(orderID, itemID, clientID)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	if err = s.deleteItemHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// FetchExtractOrders handles POST /api/v1/extract/orders - atomically claims
// pending items of the calling provider and returns them grouped by parent
// order, one perimeter per order.
func (s *Server) FetchExtractOrders(ctx echo.Context) error {
	providerID, err := identityFromHeader(ctx, HeaderProviderID)
	if err != nil {
		return respondError(ctx, err)
	}

	cmd, err := commands.NewFetchExtractOrdersCommand(providerID)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	claimed, err := s.fetchExtractHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}
	if len(claimed) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}

	return ctx.JSON(http.StatusOK, extractOrdersFromClaimedItems(claimed))
}

// UploadExtractResult handles POST /api/v1/extract/items/:itemID/result -
// a provider returns a result file, or rejects the job with a comment.
// The body is multipart form data with an optional "file" part.
func (s *Server) UploadExtractResult(ctx echo.Context) error {
	providerID, err := identityFromHeader(ctx, HeaderProviderID)
	if err != nil {
		return respondError(ctx, err)
	}
	itemID, err := kernel.UUIDFromString(ctx.Param("itemID"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	rejected := ctx.FormValue("rejected") == "true"
	comment := ctx.FormValue("comment")

	var fileName string
	var content io.Reader
	if !rejected {
		fileHeader, fileErr := ctx.FormFile("file")
		if fileErr != nil {
			return respondBadRequest(ctx, fmt.Errorf("a result file is required: %w", fileErr))
		}
		file, openErr := fileHeader.Open()
		if openErr != nil {
			return respondBadRequest(ctx, openErr)
		}
		defer file.Close()
		fileName = fileHeader.Filename
		content = file
	}

	cmd, err := commands.NewUploadExtractResultCommand(
		itemID, providerID, fileName, content, rejected, comment)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	if err = s.uploadResultHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ValidateOrderItem handles PATCH /api/v1/validations/:token - the document
// owner approves or refuses a parked item using the one-time token.
func (s *Server) ValidateOrderItem(ctx echo.Context) error {
	token, err := kernel.UUIDFromString(ctx.Param("token"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	var request ValidationRequest
	if err = ctx.Bind(&request); err != nil {
		return respondBadRequest(ctx, err)
	}

	cmd, err := commands.NewValidateOrderItemCommand(token, request.Approved, request.Comment)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	if err = s.validateItemHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// DownloadResult handles GET /api/v1/download/:token - streams the result
// archive of a processed order and stamps the download time.
func (s *Server) DownloadResult(ctx echo.Context) error {
	token, err := kernel.UUIDFromString(ctx.Param("token"))
	if err != nil {
		return respondBadRequest(ctx, err)
	}

	cmd, err := commands.NewDownloadResultCommand(token)
	if err != nil {
		return respondBadRequest(ctx, err)
	}
	archivePath, err := s.downloadHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return respondError(ctx, err)
	}

	archive, err := s.fileStore.Open(ctx.Request().Context(), archivePath)
	if err != nil {
		return respondError(ctx, err)
	}
	defer archive.Close()

	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", path.Base(archivePath)))
	return ctx.Stream(http.StatusOK, "application/zip", archive)
}

func identityFromHeader(ctx echo.Context, header string) (kernel.UUID, error) {
	value := ctx.Request().Header.Get(header)
	if value == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(header + " header")
	}
	id, err := kernel.UUIDFromString(value)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(header+" header", err)
	}
	return id, nil
}
