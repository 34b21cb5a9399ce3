package routes

import (
	"net/http"

	"github.com/elchavez14/Valiacion-de-qr/models"
	"github.com/elchavez14/Valiacion-de-qr/storage"
	"github.com/elchavez14/Valiacion-de-qr/utils"
	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
)

// POST /api/user/login
func Login(ctx iris.Context) {
	var input struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	var user models.User
	if err := storage.DB.Where("username = ?", input.Username).First(&user).Error; err != nil {
		utils.JSONError(ctx, http.StatusUnauthorized, "invalid_credentials", "wrong username or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		utils.JSONError(ctx, http.StatusUnauthorized, "invalid_credentials", "wrong username or password")
		return
	}
	if !user.IsActive() {
		utils.JSONError(ctx, http.StatusForbidden, "inactive", "account is deactivated")
		return
	}

	tokenPair, err := utils.CreateTokenPair(user.ID)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	ctx.JSON(iris.Map{
		"user":         user,
		"accessToken":  string(tokenPair.AccessToken),
		"refreshToken": string(tokenPair.RefreshToken),
	})
}

// GET /api/admin/technicians — technicians an order can be assigned to
func AdminListTechnicians(ctx iris.Context) {
	var technicians []models.User
	err := storage.DB.Where("role = ?", models.RoleTechnician).
		Order("username ASC").Find(&technicians).Error
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	ctx.JSON(iris.Map{"data": technicians})
}

// POST /api/admin/technicians — register a technician account
func AdminCreateTechnician(ctx iris.Context) {
	var input struct {
		Username string `json:"username" validate:"required"`
		FullName string `json:"fullName"`
		Email    string `json:"email" validate:"omitempty,email"`
		Password string `json:"password" validate:"required,min=8"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	user := models.User{
		Username: input.Username,
		FullName: input.FullName,
		Email:    input.Email,
		Password: string(hashed),
		Role:     models.RoleTechnician,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		utils.JSONError(ctx, http.StatusConflict, "conflict", "username already taken")
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": user})
}

// PATCH /api/admin/technicians/{id} — forced role/active changes
func AdminUpdateTechnician(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var user models.User
	if err := storage.DB.First(&user, id).Error; err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "not_found", "user not found")
		return
	}

	var input struct {
		Role   *string `json:"role" validate:"omitempty,oneof=admin technician"`
		Active *bool   `json:"active"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", err.Error())
		return
	}

	updates := map[string]interface{}{}
	if input.Role != nil {
		updates["role"] = *input.Role
	}
	if input.Active != nil {
		updates["active"] = *input.Active
	}
	if len(updates) == 0 {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "nothing to update")
		return
	}

	if err := storage.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	ctx.JSON(iris.Map{"data": user})
}
