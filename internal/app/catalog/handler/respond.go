package handler

import (
	"net/http"
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kmarket/internal/app/catalog/entity"
	"kmarket/pkg/logger"
)

// sortPattern - грамматика параметра sort: "field:dir" через запятую
// Направление обязательно, поле проверяется по allow-list глубже
var sortPattern = regexp.MustCompile(`^[a-zA-Z_]+:(asc|desc)(,[a-zA-Z_]+:(asc|desc))*$`)

// statusForCode отображает код ошибки на HTTP статус
func statusForCode(code entity.ErrorCode) int {
	switch code {
	case entity.CodeInvalidInput:
		return http.StatusBadRequest
	case entity.CodeNotFound:
		return http.StatusNotFound
	case entity.CodeUnauthorized:
		return http.StatusUnauthorized
	case entity.CodeForbidden:
		return http.StatusForbidden
	case entity.CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, entity.SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondCreated(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, entity.SuccessResponse{
		Success: true,
		Data:    data,
		Message: message,
	})
}

func respondError(c *gin.Context, code entity.ErrorCode, message string) {
	respondErrorDetails(c, code, message, nil)
}

func respondErrorDetails(c *gin.Context, code entity.ErrorCode, message string, details map[string]interface{}) {
	c.JSON(statusForCode(code), entity.ErrorResponse{
		Success: false,
		Error: entity.ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondInternal логирует причину на сервере и отдает клиенту generic сообщение
func respondInternal(c *gin.Context, err error) {
	logger.Error().Err(err).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Msg("request failed")
	respondError(c, entity.CodeInternal, "Internal server error")
}

// parseID разбирает числовой id из параметра пути
// Нечисловое значение - ошибка клиента, не поиск несуществующего id 0
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func formatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
