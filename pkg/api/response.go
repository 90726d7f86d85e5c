package api

import (
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"
)

const DefaultSuccessMessage = "Operation completed successfully"

// now подменяется в тестах.
var now = time.Now

// Response - единый конверт для всех ответов API.
// data не попадает в JSON, если сериализуется в null (nil интерфейс,
// указатель, map или slice). Нулевые значения вроде false, 0, "" остаются.
type Response[T any] struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      T      `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

type wireResponse struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func (r Response[T]) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(r.Data)
	if err != nil {
		return nil, err
	}
	if string(data) == "null" {
		data = nil
	}
	return json.Marshal(wireResponse{
		Success:   r.Success,
		Message:   r.Message,
		Data:      data,
		Timestamp: r.Timestamp,
	})
}

func newResponse[T any](success bool, message string, data T) Response[T] {
	return Response[T]{
		Success:   success,
		Message:   message,
		Data:      data,
		Timestamp: now().UnixMilli(),
	}
}

// Ok - успешный ответ без данных.
func Ok() Response[any] {
	return newResponse[any](true, DefaultSuccessMessage, nil)
}

func Success[T any](data T) Response[T] {
	return newResponse(true, DefaultSuccessMessage, data)
}

func SuccessWithMessage[T any](message string, data T) Response[T] {
	return newResponse(true, message, data)
}

func Error(message string) Response[any] {
	return newResponse[any](false, message, nil)
}

func ErrorWithData[T any](message string, data T) Response[T] {
	return newResponse(false, message, data)
}

// SuccessOne - для возврата одного объекта
func SuccessOne[T any](c echo.Context, code int, message string, data T) error {
	return c.JSON(code, SuccessWithMessage(message, data))
}

func JSON[T any](c echo.Context, code int, resp Response[T]) error {
	return c.JSON(code, resp)
}
