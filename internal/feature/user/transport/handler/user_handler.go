// Package handler はuserフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/oapi-codegen/runtime"
	"github.com/sirupsen/logrus"

	"user_backend/internal/feature/user/domain/entity"
	"user_backend/internal/feature/user/transport/http/dto"
	"user_backend/internal/feature/user/usecase"
	"user_backend/internal/platform/http/middleware"
	"user_backend/internal/platform/http/response"
	"user_backend/internal/platform/validation"
)

// ruleRange はページ番号が取りうる範囲を超えた場合のルール名です。
const ruleRange = "range"

// レスポンスメッセージ
const (
	MsgUserCreated  = "User created successfully"
	MsgUserUpdated  = "User updated successfully"
	MsgUserDeleted  = "User deleted successfully"
	MsgUserNotFound = "User not found"
)

// UserUsecase はユーザー操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type UserUsecase interface {
	GetPaginatedUsers(ctx context.Context, page, perPage int) (entity.Page[entity.User], error)
	GetUserByID(ctx context.Context, id uint) (*usecase.UserView, error)
	CreateUser(ctx context.Context, in usecase.CreateUserInput) (*usecase.CreatedUser, error)
	UpdateUser(ctx context.Context, id uint, in usecase.UpdateUserInput) (*usecase.UserView, error)
	DeleteUser(ctx context.Context, id uint) (bool, error)
	// UserExistsByEmail と EmailTakenByOther はバリデーションの unique ルールで使用します。
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, id uint) (bool, error)
}

// UserHandler はユーザーリソースのHTTPリクエストを処理します。
type UserHandler struct {
	users UserUsecase
	log   logrus.FieldLogger
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
// リクエストDTOのルールが使うバリデータ設定もここで初期化します。
func NewUserHandler(users UserUsecase, log logrus.FieldLogger) *UserHandler {
	validation.Init()
	return &UserHandler{users: users, log: log}
}

// Index はユーザー一覧をページングして返します。
//
// エンドポイント例:
// GET /api/v1/users?page=2&per_page=10
func (h *UserHandler) Index(c *gin.Context) {
	res := &validation.Result{}
	q := c.Request.URL.Query()

	page := bindPositiveQuery(res, q, "page", "page")
	perPage := bindPositiveQuery(res, q, "per_page", "per_page")
	if !res.HasField("per_page") && !q.Has("per_page") {
		// camelCase のエイリアスも受け付ける
		perPage = bindPositiveQuery(res, q, "perPage", "per_page")
	}
	if !res.OK() {
		response.ValidationError(c, res.Errors())
		return
	}

	p, err := h.users.GetPaginatedUsers(c.Request.Context(), page, perPage)
	if err != nil {
		// ページ番号が大きすぎてオフセットを表現できない
		if errors.Is(err, usecase.ErrInvalidPagination) {
			res.Add("page", ruleRange, validation.Message("page", ruleRange, ""))
			response.ValidationError(c, res.Errors())
			return
		}
		h.internalError(c, "list users failed", err)
		return
	}
	response.OK(c, dto.FromPage(p), "")
}

// Store はユーザーを新規登録します。
// - バリデーションエラー時は422を返却
// - 成功時は201を返却（パスワードは含めない）
func (h *UserHandler) Store(c *gin.Context) {
	var req dto.CreateUserReq
	res := bindJSON(c, &req)

	if !res.HasField("email") && req.Email != "" {
		taken, err := h.users.UserExistsByEmail(c.Request.Context(), req.Email)
		if err != nil {
			h.internalError(c, "email uniqueness check failed", err)
			return
		}
		if taken {
			addUnique(res)
		}
	}
	if !res.OK() {
		response.ValidationError(c, res.Errors())
		return
	}

	created, err := h.users.CreateUser(c.Request.Context(), usecase.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		// 事前チェックをすり抜けた一意制約違反も同じ422で返す
		if errors.Is(err, usecase.ErrEmailAlreadyExists) {
			h.emailTaken(c)
			return
		}
		h.internalError(c, "create user failed", err)
		return
	}
	response.Created(c, dto.FromCreated(created), MsgUserCreated)
}

// Show はIDで指定したユーザーを返します。
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, MsgUserNotFound)
		return
	}

	view, err := h.users.GetUserByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, MsgUserNotFound)
			return
		}
		h.internalError(c, "get user failed", err)
		return
	}
	response.OK(c, dto.FromView(view), "")
}

// Update は送信されたフィールドのみを更新します（PUT / PATCH 共通）。
// メールアドレスの一意性チェックでは自分自身を除外します。
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, MsgUserNotFound)
		return
	}

	var req dto.UpdateUserReq
	res := requireSent(bindJSON(c, &req), []sentField{
		{name: "name", value: req.Name},
		{name: "email", value: req.Email},
		{name: "password", value: req.Password},
	})

	if req.Email != nil && !res.HasField("email") {
		taken, err := h.users.EmailTakenByOther(c.Request.Context(), *req.Email, id)
		if err != nil {
			h.internalError(c, "email uniqueness check failed", err)
			return
		}
		if taken {
			addUnique(res)
		}
	}
	if !res.OK() {
		response.ValidationError(c, res.Errors())
		return
	}

	view, err := h.users.UpdateUser(c.Request.Context(), id, usecase.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, MsgUserNotFound)
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			h.emailTaken(c)
		default:
			h.internalError(c, "update user failed", err)
		}
		return
	}
	response.OK(c, dto.FromView(view), MsgUserUpdated)
}

// Destroy はユーザーを削除します。
func (h *UserHandler) Destroy(c *gin.Context) {
	id, ok := bindID(c)
	if !ok {
		response.Error(c, http.StatusNotFound, MsgUserNotFound)
		return
	}

	deleted, err := h.users.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.internalError(c, "delete user failed", err)
		return
	}
	if !deleted {
		response.Error(c, http.StatusNotFound, MsgUserNotFound)
		return
	}
	response.Message(c, MsgUserDeleted)
}

func (h *UserHandler) emailTaken(c *gin.Context) {
	res := &validation.Result{}
	addUnique(res)
	response.ValidationError(c, res.Errors())
}

// internalError はエラー詳細をログに残し、クライアントには汎用メッセージのみ返します。
func (h *UserHandler) internalError(c *gin.Context, msg string, err error) {
	h.log.WithFields(logrus.Fields{
		"request_id": c.GetString(middleware.RequestIDKey),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}).WithError(err).Error(msg)
	response.InternalError(c)
}

// bindID はパスパラメータ :id を正の整数として取り出します。
// 数値でない・0以下の場合は false を返します（呼び出し側で404にする）。
func bindID(c *gin.Context) (uint, bool) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || id < 1 {
		return 0, false
	}
	return uint(id), true
}

// bindPositiveQuery はクエリパラメータを1以上の整数として取り出します。
// 未指定の場合は0（ユースケース側でデフォルト値）を返します。
func bindPositiveQuery(res *validation.Result, q url.Values, param, field string) int {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, param, q, &v); err != nil {
		res.Add(field, validation.RuleInt, validation.Message(field, validation.RuleInt, ""))
		return 0
	}
	if v == nil {
		return 0
	}
	if *v < 1 {
		res.Add(field, "gte", validation.Message(field, "gte", "1"))
		return 0
	}
	return *v
}

// bindJSON はリクエストボディをバインドして検証します。
// 空ボディは {} として扱い、型不一致のフィールドがあっても残りのフィールドは検証します。
func bindJSON(c *gin.Context, obj any) *validation.Result {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}

	var ute *json.UnmarshalTypeError
	if !errors.As(err, &ute) || ute.Field == "" {
		return validation.FromError(err)
	}

	res := validation.FromError(err)
	for _, f := range validation.FromError(binding.Validator.ValidateStruct(obj)).Failures() {
		if !res.HasField(f.Field) {
			res.Add(f.Field, f.Rule, f.Message)
		}
	}
	return res
}

type sentField struct {
	name  string
	value *string
}

// requireSent は送信されたが空文字のフィールドを required 違反にします。
// そのフィールドについては他のルールの違反を報告しません。
func requireSent(res *validation.Result, fields []sentField) *validation.Result {
	empty := map[string]bool{}
	out := &validation.Result{}
	for _, f := range fields {
		if f.value != nil && *f.value == "" {
			empty[f.name] = true
			out.Add(f.name, "required", validation.Message(f.name, "required", ""))
		}
	}
	for _, f := range res.Failures() {
		if !empty[f.Field] {
			out.Add(f.Field, f.Rule, f.Message)
		}
	}
	return out
}

func addUnique(res *validation.Result) {
	res.Add("email", validation.RuleUnique, validation.Message("email", validation.RuleUnique, ""))
}
