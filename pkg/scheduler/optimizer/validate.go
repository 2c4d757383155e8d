package optimizer

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"

	"github.com/paiban/gashift/pkg/errors"
	"github.com/paiban/gashift/pkg/model"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
	validateErr  error
)

// structValidator 懒加载带中文翻译的校验器，字段名使用 json 标签
func structValidator() (*validator.Validate, ut.Translator, error) {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		zh := zh.New()
		uni := ut.New(zh, zh)
		translator, _ = uni.GetTranslator("zh")
		validateErr = zh_translations.RegisterDefaultTranslations(validate, translator)
	})
	return validate, translator, validateErr
}

// ValidateConfig 校验遗传算法参数，返回全部不合法字段
func ValidateConfig(cfg model.GAConfig) *errors.ValidationErrors {
	return validateStruct(cfg)
}

// ValidateInput 校验排班输入的字段格式；引用关系由 constraint.NewProblem 检查
func ValidateInput(in *model.ShiftInput) *errors.ValidationErrors {
	if in == nil {
		ve := &errors.ValidationErrors{}
		ve.Add("input", "输入不能为空")
		return ve
	}
	return validateStruct(in)
}

func validateStruct(s interface{}) *errors.ValidationErrors {
	ve := &errors.ValidationErrors{}
	v, trans, err := structValidator()
	if err != nil {
		ve.Add("validator", err.Error())
		return ve
	}
	err = v.Struct(s)
	if err == nil {
		return ve
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		ve.Add("input", err.Error())
		return ve
	}
	for _, fe := range fieldErrs {
		ve.Add(fieldPath(fe.Namespace()), fe.Translate(trans))
	}
	return ve
}

// fieldPath 去掉命名空间中的根类型名，例如 GAConfig.population_size → population_size
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
