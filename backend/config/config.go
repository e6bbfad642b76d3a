package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// MaxUploadSize is the per-file ceiling for multipart uploads (100 MB).
const MaxUploadSize = 100 * 1024 * 1024

type Config struct {
	ServerPort     string
	MongoURI       string
	DBName         string
	JWTSecret      string
	CloudinaryURL  string
	WatermarkText  string
	FrontendOrigin string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		ServerPort:     getEnv("PORT", "5000"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		DBName:         getEnv("DB_NAME", "lms"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		CloudinaryURL:  getEnv("CLOUDINARY_URL", ""),
		WatermarkText:  getEnv("PDF_WATERMARK", "MyWebsite"),
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
