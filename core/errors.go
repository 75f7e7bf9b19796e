package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 同 Code 的错误互相 errors.Is，调用方可以用哨兵错误判断类别
//
// 使用场景：
//   - 数据集错误：SCHEMA（缺列）、TYPE（列类型不支持）
//   - 编码错误：UNSEEN_FEATURE（transform 时出现 fit 未见过的类别值）
//   - Store 错误：NOT_FOUND, NOT_SUPPORTED
type DomainError struct {
	Code    string // 错误代码（如 "SCHEMA", "NOT_FOUND"）
	Message string // 错误消息
	Module  string // 模块名称（如 "dataset", "libffm", "store"）
	Err     error  // 底层错误，可为 nil
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is 按错误代码匹配，使 errors.Is(err, ErrSchema) 对任意模块的 SCHEMA 错误成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Module == "" || t.Module == e.Module
}

// IsDomainError 检查错误是否为 DomainError 类型
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取 DomainError（会沿 Unwrap 链查找），如果不是则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// WrapDomainError 创建携带底层错误的领域错误
func WrapDomainError(module, code, message string, err error) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeSchema        = "SCHEMA"         // 缺少必需的列
	ErrorCodeType          = "TYPE"           // 列类型不在支持范围内
	ErrorCodeUnseenFeature = "UNSEEN_FEATURE" // 类别值未在 fit 阶段出现
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleDataset   = "dataset"   // 表格与采样
	ModuleLibffm    = "libffm"    // libffm 编码
	ModuleMovielens = "movielens" // 数据集加载
	ModuleStore     = "store"     // 存储模块
	ModulePipeline  = "pipeline"  // 处理流水线
)

// 哨兵错误，仅用于 errors.Is 判断类别（Module 为空表示匹配任意模块）。
var (
	ErrSchema        = &DomainError{Code: ErrorCodeSchema, Message: "schema error"}
	ErrType          = &DomainError{Code: ErrorCodeType, Message: "type error"}
	ErrUnseenFeature = &DomainError{Code: ErrorCodeUnseenFeature, Message: "unseen feature"}
	ErrInvalidInput  = &DomainError{Code: ErrorCodeInvalidInput, Message: "invalid input"}
)

// IsSchemaError 检查错误是否为缺列错误
func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

// IsTypeError 检查错误是否为列类型错误
func IsTypeError(err error) bool {
	return errors.Is(err, ErrType)
}

// IsUnseenFeature 检查错误是否为未见过的类别值
func IsUnseenFeature(err error) bool {
	return errors.Is(err, ErrUnseenFeature)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotSupported
	}
	return false
}
