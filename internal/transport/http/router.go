package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gearsphere/motorclub-backend/internal/handlers"
	authmw "github.com/gearsphere/motorclub-backend/internal/middleware/auth"
)

type Deps struct {
	AuthMW *authmw.Middleware

	AuthHandler     *handlers.AuthHandler
	UserHandler     *handlers.UserHandler
	CarHandler      *handlers.CarHandler
	CarPhotoHandler *handlers.CarPhotoHandler
	ForumHandler    *handlers.ForumHandler
	ChatHandler     *handlers.ChatHandler
	AudioHandler    *handlers.AudioHandler
	TuningHandler   *handlers.TuningHandler

	UploadDir string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.Static("/uploads", d.UploadDir)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/signin", d.AuthHandler.SignIn)
	auth.POST("/signup", d.AuthHandler.SignUp)
	auth.POST("/refresh-token", d.AuthHandler.RefreshToken)
	auth.POST("/signout", d.AuthHandler.SignOut, d.AuthMW.RequireAuth)
	auth.PUT("/profile", d.AuthHandler.UpdateProfile, d.AuthMW.RequireAuth)

	users := api.Group("/users", d.AuthMW.RequireAuth)
	users.GET("/search", d.UserHandler.SearchUsers)

	usersAdmin := users.Group("", d.AuthMW.RequireAdmin)
	usersAdmin.GET("/all", d.UserHandler.GetAllUsers)
	usersAdmin.PUT("/:id/role", d.UserHandler.UpdateUserRole)
	usersAdmin.PUT("/:id/ban", d.UserHandler.BanUser)
	usersAdmin.PUT("/:id/unban", d.UserHandler.UnbanUser)
	usersAdmin.DELETE("/:id", d.UserHandler.DeleteUser)

	cars := api.Group("/cars", d.AuthMW.RequireAuth)
	cars.GET("", d.CarHandler.GetMyCars)
	cars.GET("/:id", d.CarHandler.GetCar)
	cars.POST("", d.CarHandler.CreateCar)
	cars.PUT("/:id", d.CarHandler.UpdateCar)
	cars.DELETE("/:id", d.CarHandler.DeleteCar)

	carPhotos := api.Group("/car-photos")
	carPhotos.GET("", d.CarPhotoHandler.GetCarPhotos)
	carPhotos.GET("/:id", d.CarPhotoHandler.GetCarPhoto)

	carPhotosAdmin := carPhotos.Group("", d.AuthMW.RequireAuth, d.AuthMW.RequireAdmin)
	carPhotosAdmin.POST("", d.CarPhotoHandler.UploadCarPhoto)
	carPhotosAdmin.PUT("/:id", d.CarPhotoHandler.UpdateCarPhoto)
	carPhotosAdmin.DELETE("/:id", d.CarPhotoHandler.DeleteCarPhoto)

	forum := api.Group("/forum")
	forum.GET("/posts", d.ForumHandler.GetPosts)
	forum.GET("/posts/:id", d.ForumHandler.GetPost)
	forum.GET("/posts/:id/comments", d.ForumHandler.GetComments)
	forum.GET("/posts/:id/likes", d.ForumHandler.GetLikes)
	forum.GET("/search", d.ForumHandler.SearchPosts)

	forumAuth := forum.Group("", d.AuthMW.RequireAuth)
	forumAuth.POST("/posts", d.ForumHandler.CreatePost)
	forumAuth.PUT("/posts/:id", d.ForumHandler.UpdatePost)
	forumAuth.DELETE("/posts/:id", d.ForumHandler.DeletePost)
	forumAuth.POST("/posts/:id/comments", d.ForumHandler.CreateComment)
	forumAuth.PUT("/posts/:id/comments/:commentId", d.ForumHandler.UpdateComment)
	forumAuth.DELETE("/posts/:id/comments/:commentId", d.ForumHandler.DeleteComment)
	forumAuth.POST("/posts/:id/like", d.ForumHandler.LikePost)
	forumAuth.POST("/posts/:id/photos", d.ForumHandler.UploadPostPhoto)

	chat := api.Group("/chat")
	chat.GET("/recent", d.ChatHandler.Recent)
	chat.GET("/history", d.ChatHandler.History)
	chat.POST("/send", d.ChatHandler.Send, d.AuthMW.RequireAuth)
	chat.DELETE("/:id", d.ChatHandler.DeleteMessage, d.AuthMW.RequireAuth, d.AuthMW.RequireAdmin)

	audio := api.Group("/audio")
	audio.GET("", d.AudioHandler.GetAudioList)
	audio.GET("/:id", d.AudioHandler.GetAudio)
	audio.PUT("/:id/position", d.AudioHandler.SavePosition, d.AuthMW.RequireAuth)

	audioAdmin := audio.Group("", d.AuthMW.RequireAuth, d.AuthMW.RequireAdmin)
	audioAdmin.POST("", d.AudioHandler.UploadAudio)
	audioAdmin.PUT("/:id", d.AudioHandler.UpdateAudio)
	audioAdmin.DELETE("/:id", d.AudioHandler.DeleteAudio)

	tuning := api.Group("/tuning", d.AuthMW.RequireAuth)
	tuning.POST("/request", d.TuningHandler.CreateRequest)
	tuning.GET("/requests/:userId", d.TuningHandler.GetUserRequests)
	tuning.GET("/requests/:userId/:type", d.TuningHandler.GetUserRequestsByType)
	tuning.PUT("/request/:id/status", d.TuningHandler.UpdateStatus, d.AuthMW.RequireAdmin)

	// The websocket endpoint authenticates the handshake itself so it can
	// accept the token from a query parameter as well as the header.
	e.GET("/ws", d.ChatHandler.ServeWS)
}
