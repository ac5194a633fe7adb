package mail

const templates = `
{{define "confirm_registration"}}
<p>Здравствуйте, {{.Username}}!</p>
<p>Для завершения регистрации перейдите по ссылке:</p>
<p><a href="{{.URL}}">Подтвердить регистрацию</a></p>
{{end}}

{{define "register_invitation"}}
<p>Вас пригласили зарегистрироваться на сайте.</p>
<p><a href="{{.URL}}">Перейти к регистрации</a></p>
{{end}}

{{define "changing_password"}}
<p>Вы запросили смену пароля.</p>
<p><a href="{{.URL}}">Сменить пароль</a></p>
<p>Если это были не вы, проигнорируйте письмо.</p>
{{end}}

{{define "confirm_subscription"}}
<p>Подтвердите подписку на новости:</p>
<p><a href="{{.URL}}">Подтвердить подписку</a></p>
{{end}}

{{define "feedback_response"}}
<p>Здравствуйте, {{.FirstName}}!</p>
<p>{{.Response}}</p>
{{end}}
`
