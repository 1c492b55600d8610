package app

// tracerName scopes spans opened by Service.
const tracerName = "dudo/internal/app"
