package api

import (
	"net/http"
	"strconv"

	"bitwise74/drive-api/service"

	"github.com/gin-gonic/gin"
)

func (a *API) FileList(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	deleted, err := strconv.ParseBool(c.DefaultQuery("deleted", "false"))
	if err != nil {
		deleted = false
	}

	favorites, err := strconv.ParseBool(c.DefaultQuery("favorites", "false"))
	if err != nil {
		favorites = false
	}

	files, err := a.Files.List(userID, service.ListOptions{
		Deleted:       deleted,
		FavoritesOnly: favorites,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
		"count": len(files),
	})
}
