package db

import (
	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const dbKey = "db"

// SetDBtoContext injeta o banco em cada request. Handlers recebem um clone com
// BlockGlobalUpdate ligado: update/delete sem WHERE falha em vez de atingir
// as linhas de todas as organizações.
func SetDBtoContext(database *gorm.DB) gin.HandlerFunc {
	scoped := database.BlockGlobalUpdate(true)
	return func(c *gin.Context) {
		c.Set(dbKey, scoped)
		c.Next()
	}
}

// DBInstance devolve o banco injetado ou nil.
func DBInstance(c *gin.Context) *gorm.DB {
	v, ok := c.Get(dbKey)
	if !ok {
		return nil
	}
	database, _ := v.(*gorm.DB)
	return database
}
