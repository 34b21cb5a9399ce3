package routes

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/elchavez14/Valiacion-de-qr/services"
	"github.com/elchavez14/Valiacion-de-qr/utils"
	"github.com/kataras/iris/v12"
)

// POST /api/orders — create an order and mint its bearer token (admin)
func CreateOrder(ctx iris.Context) {
	actor, ok := currentUser(ctx)
	if !ok {
		return
	}

	var input struct {
		TechnicianID   uint   `json:"technician_id" validate:"required"`
		TechnicianName string `json:"technician_name" validate:"required"`
		Seconds        int    `json:"seconds"`
		Minutes        int    `json:"minutes"`
		Hours          int    `json:"hours"`
		Days           int    `json:"days"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	order, err := Orders.Create(actor, input.TechnicianID, input.TechnicianName, services.Duration{
		Seconds: input.Seconds,
		Minutes: input.Minutes,
		Hours:   input.Hours,
		Days:    input.Days,
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	// The token travels back exactly once, at issuance.
	ctx.JSON(iris.Map{"order": order, "token": order.Token})
}

// GET /api/orders — admin sees all, technician sees own
func ListOrders(ctx iris.Context) {
	actor, ok := currentUser(ctx)
	if !ok {
		return
	}
	orders, err := Orders.List(actor)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": orders})
}

// GET /api/orders/{id} — one order with its evidences
func GetOrder(ctx iris.Context) {
	actor, ok := currentUser(ctx)
	if !ok {
		return
	}
	id := ctx.Params().GetUintDefault("id", 0)
	order, err := Orders.Get(actor, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": order})
}

// POST /api/orders/{id}/start — mark the order in use (assigned technician)
func StartOrder(ctx iris.Context) {
	actor, ok := currentUser(ctx)
	if !ok {
		return
	}
	id := ctx.Params().GetUintDefault("id", 0)
	order, err := Orders.Start(actor, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": order})
}

// POST /api/orders/{id}/fail — close as failed with justification + home
// photo + the pasted order token (multipart form)
func FailOrder(ctx iris.Context) {
	actor, ok := currentUser(ctx)
	if !ok {
		return
	}
	id := ctx.Params().GetUintDefault("id", 0)

	photo, header, err := ctx.FormFile("photo_address")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "photo_address file is required")
		return
	}
	defer photo.Close()

	order, err := Orders.Fail(actor, id, services.FailInput{
		Token:         ctx.FormValue("jwt"),
		Justification: ctx.FormValue("justification"),
		Notes:         ctx.FormValue("notes"),
		HomePhoto:     evidenceUpload(header, photo),
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": order})
}

// POST /api/orders/{id}/succeed — close as completed with signed document
// + identity document + the pasted order token (multipart form)
func SucceedOrder(ctx iris.Context) {
	actor, ok := currentUser(ctx)
	if !ok {
		return
	}
	id := ctx.Params().GetUintDefault("id", 0)

	titularPresent, err := strconv.ParseBool(ctx.FormValue("titular_present"))
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "titular_present must be a boolean")
		return
	}

	signedDoc, signedHeader, err := ctx.FormFile("doc_signed")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "doc_signed file is required")
		return
	}
	defer signedDoc.Close()

	idDoc, idHeader, err := ctx.FormFile("doc_id")
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "doc_id file is required")
		return
	}
	defer idDoc.Close()

	order, err := Orders.Succeed(actor, id, services.SucceedInput{
		Token:          ctx.FormValue("jwt"),
		TitularPresent: titularPresent,
		SignedDoc:      evidenceUpload(signedHeader, signedDoc),
		IDDoc:          evidenceUpload(idHeader, idDoc),
		Notes:          ctx.FormValue("notes"),
	})
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": order})
}

// POST /api/orders/{id}/validate_token — check a pasted token against the
// order without changing anything (assigned technician)
func ValidateOrderToken(ctx iris.Context) {
	actor, ok := currentUser(ctx)
	if !ok {
		return
	}
	id := ctx.Params().GetUintDefault("id", 0)

	var input struct {
		Token string `json:"jwt" validate:"required"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	valid, order, err := Orders.ValidateToken(actor, id, input.Token)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"valid": valid, "order": order})
}

// GET /api/orders/{id}/audit — the order's audit trail, newest-first (admin)
func ListOrderAudit(ctx iris.Context) {
	actor, ok := currentUser(ctx)
	if !ok {
		return
	}
	id := ctx.Params().GetUintDefault("id", 0)
	entries, err := Orders.ListAudit(actor, id)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": entries})
}

func evidenceUpload(header *multipart.FileHeader, file multipart.File) services.EvidenceFile {
	return services.EvidenceFile{Filename: header.Filename, Content: file}
}
