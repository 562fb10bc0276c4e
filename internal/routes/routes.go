package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/handlers"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	cookieKey []byte,
	authHandler *handlers.AuthHandler,
	questionHandler *handlers.QuestionHandler,
	reviewHandler *handlers.ReviewHandler,
	adminHandler *handlers.AdminHandler,
	feedbackHandler *handlers.FeedbackHandler,
	integrationsHandler *handlers.IntegrationsHandler, // may be nil when no bot token
) *gin.Engine {

	// identity is resolved once per request from the encrypted cookie
	r.Use(middleware.Identity(cookieKey))

	// ---- public
	r.POST("/register", authHandler.Register)
	r.POST("/register/verify", authHandler.VerifyEmail)
	r.POST("/register/resend", authHandler.ResendCode)
	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", authHandler.Login)
	r.POST("/password/forgot", authHandler.ForgotPassword)
	r.POST("/password/reset", authHandler.ResetPassword)
	r.GET("/unauthorized", authHandler.Unauthorized)
	r.GET("/questions/:id", questionHandler.GetQuestion)

	// ---- any authenticated identity
	auth := r.Group("", middleware.RequireAuth())
	{
		auth.GET("/forum", questionHandler.Forum)
		auth.GET("/ask-question", questionHandler.AskQuestionPage)
		auth.POST("/ask-question", questionHandler.SubmitQuestion)
		auth.GET("/my-questions", questionHandler.MyQuestions)
		auth.GET("/questions/:id/answer.pdf", questionHandler.AnswerPDF)
		auth.GET("/feedback", feedbackHandler.FeedbackPage)
		auth.POST("/feedback", feedbackHandler.Submit)
		auth.POST("/logout", authHandler.Logout)
	}

	// ---- reviewers (admin OR doctor, explicit membership)
	review := r.Group("/review", middleware.RequireRoles(authz.RoleAdmin, authz.RoleDoctor))
	{
		review.GET("/pending", reviewHandler.PendingReview)
		review.POST("", reviewHandler.Review)
		review.POST("/ai-approval", reviewHandler.AIApproval)
	}
	if integrationsHandler != nil {
		integr := r.Group("/integrations", middleware.RequireRoles(authz.RoleAdmin, authz.RoleDoctor))
		integr.POST("/telegram/link", integrationsHandler.LinkTelegram)
	}

	// ---- admin exactly
	admin := r.Group("", middleware.RequireRoles(authz.RoleAdmin))
	{
		admin.GET("/admin-dashboard", adminHandler.Dashboard)
		admin.GET("/admin/users", adminHandler.ListUsers)
		admin.GET("/admin/users/:id", adminHandler.GetUser)
		admin.DELETE("/admin/users/:id", adminHandler.DeleteUser)
		admin.GET("/admin/feedback", adminHandler.ListFeedback)
		admin.GET("/admin/reports/summary", adminHandler.Summary)
		admin.GET("/admin/reports/summary.pdf", adminHandler.SummaryPDF)
	}

	return r
}
