package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"khrental/internal/domain"
	"khrental/internal/middleware"
	"khrental/internal/service/audit"
	"khrental/internal/service/facade"
)

type MaintenanceHandler struct {
	requests     facade.Service
	auditService audit.Service
}

func NewMaintenanceHandler(requests facade.Service, auditService audit.Service) *MaintenanceHandler {
	return &MaintenanceHandler{
		requests:     requests,
		auditService: auditService,
	}
}

func (h *MaintenanceHandler) List(c *fiber.Ctx) error {
	actor, err := middleware.MustGetActor(c)
	if err != nil {
		return err
	}

	var filter domain.MaintenanceRequestFilter
	if s := c.Query("status"); s != "" {
		status := domain.RequestStatus(s)
		if !status.IsValid() {
			return middleware.BadRequest("Invalid status filter")
		}
		filter.Status = &status
	}
	if filter.PropertyID, err = queryUUID(c, "property_id"); err != nil {
		return err
	}
	if filter.AssignedTo, err = queryUUID(c, "assigned_to"); err != nil {
		return err
	}
	if filter.RenteeID, err = queryUUID(c, "rentee_id"); err != nil {
		return err
	}

	result, err := h.requests.List(c.UserContext(), actor, filter, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *MaintenanceHandler) Create(c *fiber.Ctx) error {
	actor, err := middleware.MustGetActor(c)
	if err != nil {
		return err
	}

	var input domain.CreateMaintenanceRequestInput
	if isMultipart(c) {
		input.Title = c.FormValue("title")
		input.Description = c.FormValue("description")
		input.RequestType = c.FormValue("request_type")
		input.Priority = domain.Priority(c.FormValue("priority"))
		if v := c.FormValue("property_id"); v != "" {
			if input.PropertyID, err = uuid.Parse(v); err != nil {
				return middleware.BadRequest("Invalid property ID")
			}
		}
		if v := c.FormValue("rentee_id"); v != "" {
			renteeID, err := uuid.Parse(v)
			if err != nil {
				return middleware.BadRequest("Invalid rentee ID")
			}
			input.RenteeID = &renteeID
		}
	} else if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	uploads, err := uploadsFrom(c)
	if err != nil {
		return err
	}

	detail, err := h.requests.Create(c.UserContext(), actor, input, uploads)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, detail)
}

func (h *MaintenanceHandler) Get(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	detail, err := h.requests.GetRequest(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, detail)
}

func (h *MaintenanceHandler) Assign(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var input domain.AssignInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	detail, err := h.requests.Assign(c.UserContext(), actor, id, input.StaffID)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, detail)
}

func (h *MaintenanceHandler) StartWork(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	detail, err := h.requests.StartWork(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, detail)
}

func (h *MaintenanceHandler) Complete(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var body struct {
		Notes string `json:"notes"`
	}
	if isMultipart(c) {
		body.Notes = c.FormValue("notes")
	} else if err := c.BodyParser(&body); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	uploads, err := uploadsFrom(c)
	if err != nil {
		return err
	}

	detail, err := h.requests.Complete(c.UserContext(), actor, id, body.Notes, uploads)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, detail)
}

func (h *MaintenanceHandler) Cancel(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var input domain.CancelInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	detail, err := h.requests.Cancel(c.UserContext(), actor, id, input.Reason)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusOK, detail)
}

// AddImages takes one or more files. A single file is stored all-or-nothing;
// several files succeed or fail independently and the response lists both.
func (h *MaintenanceHandler) AddImages(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	uploads, err := uploadsFrom(c)
	if err != nil {
		return err
	}
	imageType := domain.ImageType(c.FormValue("type"))

	if len(uploads) == 1 {
		detail, err := h.requests.AddImage(c.UserContext(), actor, id, uploads[0], imageType)
		if err != nil {
			return err
		}
		return respond(c, fiber.StatusCreated, detail)
	}

	batch, err := h.requests.AddImages(c.UserContext(), actor, id, uploads, imageType)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if batch.FailedN > 0 {
		status = fiber.StatusMultiStatus
	}
	if batch.Detail != nil {
		setETag(c, batch.Detail)
	}
	return c.Status(status).JSON(batch)
}

func (h *MaintenanceHandler) AddComment(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	var input domain.CreateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	detail, err := h.requests.AddComment(c.UserContext(), actor, id, input)
	if err != nil {
		return err
	}

	return respond(c, fiber.StatusCreated, detail)
}

func (h *MaintenanceHandler) ListComments(c *fiber.Ctx) error {
	actor, id, err := actorAndID(c)
	if err != nil {
		return err
	}

	comments, err := h.requests.Comments(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(comments)
}

func (h *MaintenanceHandler) ListAudit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.BadRequest("Invalid request ID")
	}

	result, err := h.auditService.ListByRequest(c.UserContext(), id, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func respond(c *fiber.Ctx, status int, detail *facade.Detail) error {
	setETag(c, detail)
	return c.Status(status).JSON(detail)
}

// setETag exposes the request version so clients can send it back in
// If-Match on their next change.
func setETag(c *fiber.Ctx, detail *facade.Detail) {
	if detail != nil && detail.Request != nil {
		c.Set(fiber.HeaderETag, fmt.Sprintf(`W/"%d"`, detail.Request.Version))
	}
}

func actorAndID(c *fiber.Ctx) (domain.Actor, uuid.UUID, error) {
	actor, err := middleware.MustGetActor(c)
	if err != nil {
		return domain.Actor{}, uuid.Nil, err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.Actor{}, uuid.Nil, middleware.BadRequest("Invalid request ID")
	}
	return actor, id, nil
}

func queryUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, middleware.BadRequest("Invalid " + strings.ReplaceAll(key, "_", " "))
	}
	return &id, nil
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

var uploadFields = []string{"files", "files[]", "file"}

func uploadsFrom(c *fiber.Ctx) ([]domain.Upload, error) {
	if !isMultipart(c) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, middleware.BadRequest("Invalid multipart form")
	}

	var uploads []domain.Upload
	for _, field := range uploadFields {
		for _, fh := range form.File[field] {
			uploads = append(uploads, toUpload(fh))
		}
	}
	return uploads, nil
}

func toUpload(fh *multipart.FileHeader) domain.Upload {
	return domain.Upload{
		FileName:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
