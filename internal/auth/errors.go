package auth

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingToken はリクエストにトークンが含まれていないことを表します。
	ErrMissingToken = errors.New("auth: missing token")
	// ErrInvalidToken は署名不一致・形式不正・期限切れのトークンを表します。
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrMissingSecret は署名用の秘密鍵が設定されていないことを表します（設定ミス）。
	ErrMissingSecret = errors.New("auth: signing secret is not configured")
	// ErrPasswordTooLong は bcrypt の上限（72バイト）を超えるパスワードを表します。
	ErrPasswordTooLong = errors.New("auth: password exceeds 72 bytes")
)

// RequestError はクライアントへそのまま返すエラーです。
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func unprocessable(msg string) *RequestError {
	return &RequestError{Status: http.StatusUnprocessableEntity, Message: msg}
}

// レスポンスメッセージ
const (
	msgAccessDenied    = "Access denied"
	msgInvalidToken    = "Invalid token"
	msgInvalidJSON     = "JSON inválido"
	msgNameRequired    = "O nome é obrigatório!"
	msgEmailRequired   = "O e-mail é obrigatório!"
	msgPassRequired    = "O password é obrigatório!"
	msgConfirmRequired = "A confirmação de senha é obrigatória!"
	msgPassMismatch    = "A senhas não conferem"
	msgPassTooLong     = "O password deve ter no máximo 72 bytes"
	msgEmailTaken      = "Por Favor, Utilize outro e-mail"
	msgUserCreated     = "Usuário criado com Sucesso"
	msgUserNotFound    = "Usuário não encontrado"
	msgWrongPassword   = "Senha inválida"
	msgLoggedIn        = "Autenticação realizada com sucesso"
	msgRegisterFailed  = "Infelizmente aconteceu algum erro no servidor, tente novamente mais tarde"
	msgServerError     = "Aconteceu um erro no servidor"
)
