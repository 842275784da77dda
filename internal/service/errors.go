package service

import "errors"

// 哨兵错误：对外统一语义，隐藏底层实现细节
var (
	// ErrInvalidInput 参数缺失、枚举取值非法或引用了停用/不存在的标签
	ErrInvalidInput     = errors.New("invalid input")
	ErrResponseNotFound = errors.New("response not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrMappingNotFound  = errors.New("question tag mapping not found")
	// ErrInvalidCredentials 用户名或密码错误（登录时统一返回，防止用户枚举）
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrCuratorNotFound      = errors.New("curator not found")
	ErrCuratorAlreadyExists = errors.New("curator already exists")
	// ErrInternal 内部错误（对外不暴露细节）
	ErrInternal = errors.New("internal server error")
)
