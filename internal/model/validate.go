package model

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// 上映日期下限
var minReleaseDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)

// validate 模型层校验器，写入前统一校验
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// release_date 规则：1900-01-01 <= 日期 <= 今天，按日比较
	v.RegisterValidation("release_date", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(time.Time)
		if !ok {
			return false
		}
		day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return !day.Before(minReleaseDate) && !day.After(today)
	})

	return v
}

// ValidationError 字段级校验错误，在边界层返回给调用方，不再向上抛
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// IsValidationError 判断是否为校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// fieldMessage 把 validator 的失败项翻译成面向用户的消息
func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Title":
		return "标题长度不能少于 2 个字符"
	case "Name":
		return "名称长度不能少于 2 个字符"
	case "ReleaseDate":
		return "上映日期必须在 1900-01-01 和今天之间"
	case "Rating":
		return "评分必须在 1 到 5 之间"
	case "CountryID":
		return "必须指定国家"
	case "Type":
		return "媒体类型必须是 movie 或 tvshow"
	case "Length":
		return "时长必须大于 0"
	case "SeasonsCount":
		return "季数不能为负数"
	}
	return "字段值不合法"
}

func checkStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return &ValidationError{Field: fe.Field(), Message: fieldMessage(fe)}
	}
	return err
}

// BeforeSave 写入前校验，拒绝非法值而不是静默修正
func (m *Media) BeforeSave(tx *gorm.DB) error {
	return checkStruct(m)
}

func (g *Genre) BeforeSave(tx *gorm.DB) error {
	return checkStruct(g)
}

func (c *Country) BeforeSave(tx *gorm.DB) error {
	return checkStruct(c)
}

// BeforeSave 评分为零值时套用默认值 5，再做范围校验
func (r *Rating) BeforeSave(tx *gorm.DB) error {
	if r.Rating == 0 {
		r.Rating = 5
	}
	return checkStruct(r)
}
