package constants

import "time"

const DefaultUploadSizeLimit = 25 << 20

// logical folder on the object store where gradient binaries live
const DefaultUploadFolder = "gradients"

const TokenExpiryDurationLogin = time.Hour * 24 * 30
const TokenExpiryDurationRegister = time.Hour * 24 * 30

// fallback display name when neither a name nor a usable filename was supplied
const DefaultGradientLabel = "gradient"

const DefaultDatabaseName = "gradora"
